// Package rlog is the routing core's own small logger: two levels, built
// with functional options, with an optional rotating file sink on top of
// gopkg.in/natefinch/lumberjack.v2. It exists so route.Router can report
// duplicate-registration replacements and other noteworthy events without
// forcing every caller to wire in a general-purpose logging framework.
package rlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Option configures a Logger built by New.
type Option func(*config)

type config struct {
	filename   string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	writer     io.Writer
}

func defaultConfig() *config {
	return &config{
		maxSizeMB:  10,
		maxBackups: 3,
		maxAgeDays: 28,
		writer:     os.Stderr,
	}
}

// WithFile directs log output at a rotating file in addition to the
// default stderr sink. An empty path disables file output.
func WithFile(path string) Option {
	return func(c *config) { c.filename = path }
}

// WithMaxSize sets the rotation threshold, in megabytes, for the file sink.
func WithMaxSize(mb int) Option {
	return func(c *config) { c.maxSizeMB = mb }
}

// WithMaxBackups sets how many rotated files WithFile retains.
func WithMaxBackups(n int) Option {
	return func(c *config) { c.maxBackups = n }
}

// WithMaxAge sets how many days WithFile retains rotated files.
func WithMaxAge(days int) Option {
	return func(c *config) { c.maxAgeDays = days }
}

// WithWriter overrides the non-file sink (os.Stderr by default). Mainly
// useful in tests, to capture output instead of polluting the test run's
// stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writer = w }
}

// Logger is a minimal Warn/Info logger. The core has no need for Debug or
// Error: a route either registers cleanly or returns an error to its
// caller, and there is nothing below "informational" worth recording.
//
// A nil *Logger is safe to call and drops everything, so callers can hold
// one as a struct field without a separate "is logging enabled" check.
type Logger struct {
	mu   sync.Mutex
	file *lumberjack.Logger
	w    io.Writer
}

// New builds a Logger from opts. The returned Logger always writes to
// os.Stderr (or the writer set by WithWriter); WithFile additionally mirrors
// every line to a rotated file.
func New(opts ...Option) *Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	l := &Logger{w: cfg.writer}
	if cfg.filename != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.filename,
			MaxSize:    cfg.maxSizeMB,
			MaxBackups: cfg.maxBackups,
			MaxAge:     cfg.maxAgeDays,
		}
	}
	return l
}

// Discard returns a Logger (in fact, the nil *Logger) that drops every
// message. It is the zero value Router falls back to unless WithLogger or
// WithLogFile is supplied.
func Discard() *Logger {
	return nil
}

// Info logs a message at informational severity.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", format, args...)
}

// Warn logs a message at warning severity.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", format, args...)
}

func (l *Logger) log(level, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s %s %s\n", time.Now().UTC().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
	if l.w != nil {
		io.WriteString(l.w, line)
	}
	if l.file != nil {
		io.WriteString(l.file, line)
	}
}

// Close releases the rotating file sink, if one was configured.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
