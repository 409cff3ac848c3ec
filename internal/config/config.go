// Package config loads the CLI's optional .sourcemaptoolrc.toml file,
// the way build tools commonly carry a TOML config alongside flags.
// Flags always win; a config value only fills in an unset flag default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sourcemapgo/tracemap/internal/log"
)

// FileName is the config file searched for starting at the current
// directory and walking up to the filesystem root.
const FileName = ".sourcemaptoolrc.toml"

// Config mirrors the CLI's global flags.
type Config struct {
	DefaultBias string `toml:"default_bias"`
	CacheSize   int    `toml:"cache_size"`
	LogLevel    string `toml:"log_level"`
}

// Default returns the config used when no file is found.
func Default() Config {
	return Config{
		DefaultBias: "glb",
		CacheSize:   128,
		LogLevel:    "info",
	}
}

// Load searches startDir and each of its ancestors for FileName,
// returning Default() unmodified if none is found. A malformed file that
// does exist is an error, not a silent fallback.
func Load(startDir string) (Config, error) {
	cfg := Default()

	path, err := findUpward(startDir, FileName)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}

	if !validLogLevel(cfg.LogLevel) {
		return Config{}, fmt.Errorf("config: %s: invalid log_level %q", path, cfg.LogLevel)
	}
	cfg.LogLevel = log.ParseLevel(cfg.LogLevel).String()

	return cfg, nil
}

// validLogLevel rejects a config typo up front instead of letting
// log.ParseLevel silently fold it to "info" — a flag is allowed that
// leniency, but a config file value should fail loudly.
func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func findUpward(dir, name string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
