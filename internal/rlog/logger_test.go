package rlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("should not panic: %d", 1)
	l.Warn("should not panic: %s", "ok")
	require.NoError(t, l.Close())
}

func TestDiscardIsNil(t *testing.T) {
	assert.Nil(t, Discard())
}

func TestLogWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))

	l.Info("hello %s", "world")
	l.Warn("careful %d", 7)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "hello world")
	assert.Contains(t, lines[1], "WARN")
	assert.Contains(t, lines[1], "careful 7")
}

func TestWithFileConfiguresRotation(t *testing.T) {
	dir := t.TempDir()
	l := New(WithFile(dir+"/test.log"), WithMaxSize(1), WithMaxBackups(2), WithMaxAge(1))
	require.NotNil(t, l.file)
	assert.Equal(t, dir+"/test.log", l.file.Filename)
	assert.Equal(t, 1, l.file.MaxSize)
	assert.Equal(t, 2, l.file.MaxBackups)
	assert.Equal(t, 1, l.file.MaxAge)
	require.NoError(t, l.Close())
}
