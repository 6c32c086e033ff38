// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration for a staticd process.
//
// Values are resolved in four layers, later layers winning: built-in
// defaults, the YAML config file, the ADDRESS and PORT environment
// variables, and command-line flags (applied by the caller).
type Config struct {
	// BaseDir is the directory whose contents are loaded into memory
	// and served. Relative paths are resolved against the working
	// directory of the process.
	BaseDir string `yaml:"base_dir"`

	// FallbackPath is the URL path served when a request misses the
	// snapshot, typically /index.html for single-page applications.
	// Empty disables the fallback and misses return 404.
	FallbackPath string `yaml:"fallback_path"`

	// Address is the host:port the server binds. Port 0 asks the
	// kernel for a free port.
	Address string `yaml:"address"`

	// Port, when non-zero, replaces the port part of Address. It
	// exists so that supervisors can assign ports without rewriting
	// the address.
	Port int `yaml:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text for human-readable output or json for
	// machine-parseable output.
	LogFormat string `yaml:"log_format"`

	// Precompress controls sibling generation at startup.
	Precompress PrecompressConfig `yaml:"precompress"`

	// MimeTypes maps additional file extensions (with leading dot)
	// to content types, extending the system table.
	MimeTypes map[string]string `yaml:"mime_types"`
}

// PrecompressConfig controls generation of .gz, .br, and .zst
// siblings before the cache is built.
type PrecompressConfig struct {
	// Enabled turns sibling generation on. The base directory must
	// be writable.
	Enabled bool `yaml:"enabled"`

	// MinSize is the smallest file, in bytes, worth compressing.
	// Zero means the built-in default.
	MinSize int64 `yaml:"min_size"`
}

// Default returns the built-in configuration: serve the working
// directory on the loopback interface with plain text logging.
func Default() *Config {
	return &Config{
		BaseDir:   ".",
		Address:   "127.0.0.1:12234",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load returns configuration from the file named by the
// STATICD_CONFIG environment variable, or the defaults when it is
// unset. ADDRESS and PORT overrides are applied either way.
func Load() (*Config, error) {
	if path := os.Getenv("STATICD_CONFIG"); path != "" {
		return LoadFile(path)
	}
	return finalize(Default())
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	if err := cfg.applyEnvironment(); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// envOverrides are the settings recognized from the process
// environment on top of the config file. They cover the two values
// process supervisors most often assign; everything else comes from
// the file or flags.
type envOverrides struct {
	Address string `env:"ADDRESS"`
	Port    int    `env:"PORT"`
}

func (c *Config) applyEnvironment() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return err
	}
	if overrides.Address != "" {
		c.Address = overrides.Address
	}
	if overrides.Port != 0 {
		c.Port = overrides.Port
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.BaseDir = expandVars(c.BaseDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseDir == "" {
		errs = append(errs, fmt.Errorf("base_dir is required"))
	}

	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		errs = append(errs, fmt.Errorf("address %q is not a host:port pair: %v", c.Address, err))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", levels))
	}

	formats := []string{"text", "json"}
	if !slices.Contains(formats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format must be one of: %v", formats))
	}

	if c.Precompress.MinSize < 0 {
		errs = append(errs, fmt.Errorf("precompress.min_size cannot be negative"))
	}

	for extension, contentType := range c.MimeTypes {
		if !strings.HasPrefix(extension, ".") {
			errs = append(errs, fmt.Errorf("mime_types key %q must start with a dot", extension))
		}
		if contentType == "" {
			errs = append(errs, fmt.Errorf("mime_types entry for %q has an empty type", extension))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ListenAddress returns the address to bind, with the Port override
// applied when set.
func (c *Config) ListenAddress() string {
	if c.Port == 0 {
		return c.Address
	}
	host, _, err := net.SplitHostPort(c.Address)
	if err != nil {
		host = c.Address
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}
