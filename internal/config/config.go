// Package config provides configuration management with 2-tier priority:
// command-line flags > environment variables > default values.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Response ResponseConfig
	Log      LogConfig
	Index    IndexConfig
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
}

// ResponseConfig holds the fixed-response settings.
type ResponseConfig struct {
	File        string // file served for every request, read once at startup
	ContentType string // optional override; empty means detect
}

// LogConfig holds capture-log settings.
type LogConfig struct {
	File     string
	Clear    bool // truncate the log at startup
	Echo     bool // mirror blocks to stdout
	FailFast bool // a failed append terminates the process

	// Rotation, powered by lumberjack. MaxSizeMB 0 disables rotation.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// IndexConfig holds the optional SQLite capture index settings.
type IndexConfig struct {
	Path string // empty disables the index
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     6565,
			LogLevel: "INFO",
		},
		Log: LogConfig{
			File:       "requests.log",
			Echo:       true,
			FailFast:   true,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load builds configuration from defaults and environment variables.
// Flag overrides are applied afterwards by the CLI layer.
func Load() *Config {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Response.File == "" {
		return &ConfigError{Field: "response.file", Message: "response file is required"}
	}
	if c.Log.File == "" {
		return &ConfigError{Field: "log.file", Message: "log file is required"}
	}
	if c.Log.MaxSizeMB < 0 {
		return &ConfigError{Field: "log.max_size_mb", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = getEnvStr("LOG_SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("LOG_SERVER_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Response.File = getEnvStr("LOG_SERVER_RESPONSE_FILE", cfg.Response.File)
	cfg.Response.ContentType = getEnvStr("LOG_SERVER_CONTENT_TYPE", cfg.Response.ContentType)

	cfg.Log.File = getEnvStr("LOG_SERVER_LOG_FILE", cfg.Log.File)
	cfg.Log.Clear = getEnvBool("LOG_SERVER_CLEAR_LOG", cfg.Log.Clear)
	cfg.Log.Echo = getEnvBool("LOG_SERVER_ECHO", cfg.Log.Echo)
	cfg.Log.FailFast = getEnvBool("LOG_SERVER_LOG_FAIL_FAST", cfg.Log.FailFast)
	cfg.Log.MaxSizeMB = getEnvInt("LOG_SERVER_LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = getEnvInt("LOG_SERVER_LOG_MAX_BACKUPS", cfg.Log.MaxBackups)
	cfg.Log.MaxAgeDays = getEnvInt("LOG_SERVER_LOG_MAX_AGE_DAYS", cfg.Log.MaxAgeDays)
	cfg.Log.Compress = getEnvBool("LOG_SERVER_LOG_COMPRESS", cfg.Log.Compress)

	cfg.Index.Path = getEnvStr("LOG_SERVER_INDEX_DB", cfg.Index.Path)
}

// Helper functions for environment variable parsing.

func getEnvStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	lower := strings.ToLower(v)
	return lower == "true" || lower == "1" || lower == "yes" || lower == "on"
}
