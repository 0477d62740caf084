// Package routeconfig loads optional YAML settings for a route.Router, in
// the same search-path style arkd0ng-go-utils/logging uses for app.yaml:
// try a short list of conventional locations and fall back to an empty
// Config, rather than forcing every embedder to carry one.
package routeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of route.yaml.
//
// CaseInsensitiveHosts is a *bool, not a bool: a plain bool's zero value
// (false) can't be told apart from "route.yaml didn't set this key", and
// route.New's documented default is true. A pointer lets WithConfig apply
// an explicit false without also clobbering that default whenever the
// caller builds a Config from a missing file.
type Config struct {
	LogFile              string `yaml:"log_file"`
	LogMaxSizeMB         int    `yaml:"log_max_size_mb"`
	LogMaxBackups        int    `yaml:"log_max_backups"`
	ScriptName           string `yaml:"script_name"`
	CaseInsensitiveHosts *bool  `yaml:"case_insensitive_hosts"`
}

// searchPaths mirrors LoadAppConfig's current-dir-then-parent-dirs search,
// scoped to route.yaml instead of app.yaml.
var searchPaths = []string{
	"route.yaml",
	"config/route.yaml",
	"../route.yaml",
}

// Load searches searchPaths in order and decodes the first route.yaml it
// finds. If none exists, it returns a zero-value Config and a nil error:
// the absence of a config file is not itself an error, only a malformed
// one is.
func Load() (Config, error) {
	for _, path := range searchPaths {
		cfg, err := loadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return Config{}, err
		}
	}
	return Config{}, nil
}

func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("routeconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
