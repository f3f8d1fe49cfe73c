package config

import "time"

// Config holds server configuration values, following the mapstructure
// (viper) and yaml tag conventions the teacher's config used.
type Config struct {
	// Addr is the raw-TCP chat listen address, e.g. ":8080".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// AdminAddr is the separate listen address for the additive
	// gin-based /healthz and /stats surface (SPEC_FULL.md §4).
	AdminAddr string `mapstructure:"admin_addr" yaml:"admin_addr"`

	// LogDir is the directory the append-only timestamped chat log is
	// written under (spec.md §4.8, §9).
	LogDir string `mapstructure:"log_dir" yaml:"log_dir"`

	// LogLevel controls the ambient zerolog ops logger's verbosity.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:            ":8080",
		AdminAddr:       "127.0.0.1:8081",
		LogDir:          "logs",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.LogDir != "" {
		c.LogDir = other.LogDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}
