// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the Sitekey configuration from defaults, an optional
// YAML file, environment variables and command-line flags, in ascending
// precedence. Configuration is read-only: Sitekey never writes a config file
// and no secret ever passes through this package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds every tunable of the Sitekey CLI. Keys match the long flag
// names, so `--clip-time 30`, `SITEKEY_CLIP_TIME=30` and a `clip-time: 30`
// line in sitekey.yaml all set the same field.
type Config struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Counter     int    `mapstructure:"counter"`
	Copy        bool   `mapstructure:"copy"`
	ClipTime    int    `mapstructure:"clip-time"`
	Hide        bool   `mapstructure:"hide"`
	Delimiter   string `mapstructure:"delimiter"`
	Keepalive   bool   `mapstructure:"keepalive"`
	IdleTimeout int    `mapstructure:"idle-timeout"`
	LockCommand string `mapstructure:"lock-command"`
	Quiet       bool   `mapstructure:"quiet"`
	Verbose     bool   `mapstructure:"verbose"`
	NoColor     bool   `mapstructure:"no-color"`
	Language    string `mapstructure:"language"`
}

// Normalize applies the cross-field rules that cannot be expressed as plain
// defaults: hide mode makes clipboard delivery mandatory, and a
// whitespace-only delimiter disables split mode.
func (c *Config) Normalize() {
	if c.Hide {
		c.Copy = true
	}
	if strings.TrimSpace(c.Delimiter) == "" {
		c.Delimiter = ""
	}
}

// SplitMode reports whether the interactive session reads all parameters from
// one delimiter-separated line.
func (c *Config) SplitMode() bool { return c.Delimiter != "" }

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Sitekey")
		default: // Linux, macOS, etc.
			configDir = "/etc/sitekey"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "sitekey")
	}

	return filepath.Join(configDir, "sitekey.yaml"), nil
}

// LoadConfig builds a T from defaults, config file, environment and the
// command's flags. An explicit config file path (from the --config flag) takes
// precedence over the standard search locations. A missing config file is not
// an error; Sitekey never creates one.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search (sitekey.yaml)
	v.SetConfigName("sitekey")
	v.SetConfigType("yaml")

	// 3. Explicit config file path from the --config flag has the highest
	// precedence for file-based configuration.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Standard config locations
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for sitekey.yaml in current dir

	// 5. Read in the primary config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// 6. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("sitekey")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// 7. Flags win over everything else.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	// parse config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}
