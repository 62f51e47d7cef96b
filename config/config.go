// Package config provides configuration management for DB Switch.
// It handles loading, saving, and managing application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steve-ongera/dbswitch/common"
)

// Environment variables recognized on top of the config file.
const (
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "DBSWITCH_LOG_LEVEL"
	// EnvDefaultTarget overrides the configured default target name.
	EnvDefaultTarget = "DBSWITCH_DEFAULT_TARGET"
	// EnvDatabaseURL supplies an ad-hoc target as a URL, bypassing
	// the saved targets entirely.
	EnvDatabaseURL = "DATABASE_URL"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// DefaultTarget is the name of the target preselected at startup.
	// Empty means the first saved target, or the built-in local one.
	DefaultTarget string `yaml:"default_target"`
	// ShowNotifications enables desktop notifications for connection events.
	ShowNotifications bool `yaml:"show_notifications"`
	// MonitorEnabled enables the server reachability monitor while connected.
	MonitorEnabled bool `yaml:"monitor_enabled"`
	// MonitorIntervalSeconds is how often the monitor probes the server.
	MonitorIntervalSeconds int `yaml:"monitor_interval_seconds"`
	// ConnectTimeoutSeconds bounds a single open attempt.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	// LogLevel sets logging verbosity: "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level"`
	// LogToFile enables logging to the file in the config directory.
	LogToFile bool `yaml:"log_to_file"`
}

// DefaultConfig returns the default configuration.
// These are sensible defaults for most users.
func DefaultConfig() *Config {
	return &Config{
		ShowNotifications:      true,
		MonitorEnabled:         true,
		MonitorIntervalSeconds: int(common.MonitorInterval / time.Second),
		ConnectTimeoutSeconds:  int(common.ConnectTimeout / time.Second),
		LogLevel:               "info",
		LogToFile:              false,
	}
}

// Load loads the configuration from the config file and applies
// environment overrides. If the file doesn't exist, it creates one
// with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	// If it doesn't exist, persist and return the defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnv()
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	config.validate()
	config.applyEnv()

	return &config, nil
}

// validate clamps out-of-range values back to defaults rather than
// failing the load.
func (c *Config) validate() {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}

	if c.MonitorIntervalSeconds <= 0 {
		c.MonitorIntervalSeconds = int(common.MonitorInterval / time.Second)
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = int(common.ConnectTimeout / time.Second)
	}
}

// applyEnv applies environment variable overrides on top of the
// file-backed values.
func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			c.LogLevel = level
		}
	}
	if name := os.Getenv(EnvDefaultTarget); name != "" {
		c.DefaultTarget = name
	}
}

// Save saves the configuration to the file
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	return nil
}

// MonitorInterval returns the probe interval as a duration.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalSeconds) * time.Second
}

// ConnectTimeout returns the open-attempt bound as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// LogLevelValue maps the configured level name to a logger level.
func (c *Config) LogLevelValue() common.LogLevel {
	switch c.LogLevel {
	case "debug":
		return common.LevelDebug
	case "warn":
		return common.LevelWarn
	case "error":
		return common.LevelError
	default:
		return common.LevelInfo
	}
}

func getConfigPath() (string, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}

	return filepath.Join(configDir, common.ConfigFileName), nil
}
