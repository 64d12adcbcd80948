// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"precipice-cli/internal/bench"
	"precipice-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, also the config directory name.
	AppName = "precipice"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	// listSeparator joins list values into a single stored string. It is
	// deliberately a sequence no filesystem path or argument is likely to
	// contain.
	listSeparator = "---,---"
)

// Config holds the persisted session preferences.
type Config struct {
	// TargetPath is the last chosen binary to benchmark.
	TargetPath string
	// TargetArgs is the last argument list, in order.
	TargetArgs []string
	// Runs is the last run count.
	Runs int
	// Warmup records whether warmup runs were enabled.
	Warmup bool
	// TraceFiles are prior trace files to include on export.
	TraceFiles []string
}

// DefaultConfig returns the preferences used before anything is saved.
func DefaultConfig() *Config {
	return &Config{Runs: bench.DefaultRuns, Warmup: true}
}

// ConfigDir returns the precipice configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	// Allow tests to override the config directory.
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

func configFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the persisted preferences, returning defaults when no file
// exists yet. Stored paths that no longer exist on disk are dropped.
func Load() (*Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if !fileExists(path) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)
	v.SetDefault("runs", cfg.Runs)
	v.SetDefault("warmup", cfg.Warmup)

	if err := v.ReadInConfig(); err != nil {
		return nil, issue.WrapResource(err, "load preferences", path).
			WithSuggestion("Delete the file to start from defaults")
	}

	cfg.TargetPath = v.GetString("target_path")
	cfg.TargetArgs = splitList(v.GetString("target_args"))
	cfg.Runs = v.GetInt("runs")
	cfg.Warmup = v.GetBool("warmup")
	cfg.TraceFiles = splitList(v.GetString("trace_files"))

	if cfg.TargetPath != "" && !fileExists(cfg.TargetPath) {
		cfg.TargetPath = ""
	}
	cfg.TraceFiles = keepExisting(cfg.TraceFiles)
	if cfg.Runs < 1 {
		cfg.Runs = bench.DefaultRuns
	}

	return cfg, nil
}

// Save writes the preferences, creating the config directory if needed.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return issue.WrapResource(err, "save preferences", dir)
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)
	v.Set("target_path", cfg.TargetPath)
	v.Set("target_args", joinList(cfg.TargetArgs))
	v.Set("runs", cfg.Runs)
	v.Set("warmup", cfg.Warmup)
	v.Set("trace_files", joinList(cfg.TraceFiles))

	if err := v.WriteConfigAs(path); err != nil {
		return issue.WrapResource(err, "save preferences", path)
	}
	return nil
}

// splitList decodes a delimiter-joined list. An empty string decodes to no
// elements, not to [""].
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

func keepExisting(paths []string) []string {
	var kept []string
	for _, p := range paths {
		if fileExists(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
