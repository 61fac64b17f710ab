// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Shell     ShellConfig
	Skills    SkillsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ShellConfig holds interactive shell session configuration.
type ShellConfig struct {
	// Type selects the shell: "auto" picks bash, then cmd (Windows),
	// then sh, matching availability on the host.
	Type string `envconfig:"SHELL_TYPE" default:"auto"`
	// BashPath overrides the bash executable location.
	BashPath string `envconfig:"SHELL_BASH_PATH" default:"bash"`
	// DefaultWait bounds a foreground run when the caller supplies no budget.
	DefaultWait time.Duration `envconfig:"SHELL_DEFAULT_WAIT" default:"100s"`
	// BackgroundWait is the short budget a background run waits before
	// reporting the command as still running.
	BackgroundWait time.Duration `envconfig:"SHELL_BACKGROUND_WAIT" default:"10s"`
	// PollSlice is the read timeout of one marker-poll iteration.
	PollSlice time.Duration `envconfig:"SHELL_POLL_SLICE" default:"100ms"`
	// MaxChars caps how many buffered characters a single read returns.
	MaxChars int `envconfig:"SHELL_MAX_CHARS" default:"20000"`
}

// SkillsConfig holds skill library configuration.
type SkillsConfig struct {
	Dir string `envconfig:"SKILLS_DIR" default:"skills"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Shell: ShellConfig{
			Type:           "auto",
			BashPath:       "bash",
			DefaultWait:    100 * time.Second,
			BackgroundWait: 10 * time.Second,
			PollSlice:      100 * time.Millisecond,
			MaxChars:       20000,
		},
		Skills: SkillsConfig{
			Dir: "skills",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Address returns the host:port listen address.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}
