// Package config loads scicalc.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/scicalc"
)

// DefaultPath is read when --config is not given.
const DefaultPath = "scicalc.yaml"

var ErrInvalid = errors.New("config: invalid")

// Config holds all scicalc configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`

	// Decimal places for trig values and approximations.
	Precision int `yaml:"precision"`

	// Form values the page starts with.
	Defaults scicalc.Form `yaml:"defaults"`
}

// ServerConfig configures the HTTP server. Durations use time.ParseDuration
// syntax.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`

	// Reload precision and defaults when the config file changes.
	Watch bool `yaml:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "15s",
			IdleTimeout:       "60s",
			ShutdownTimeout:   "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Precision: 4,
		Defaults:  scicalc.DefaultForm(),
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if addr := os.Getenv("SCICALC_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("SCICALC_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if p := os.Getenv("SCICALC_PRECISION"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: SCICALC_PRECISION=%q", ErrInvalid, p)
		}
		c.Precision = n
	}
	return nil
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	for name, d := range map[string]string{
		"read_header_timeout": c.Server.ReadHeaderTimeout,
		"read_timeout":        c.Server.ReadTimeout,
		"write_timeout":       c.Server.WriteTimeout,
		"idle_timeout":        c.Server.IdleTimeout,
		"shutdown_timeout":    c.Server.ShutdownTimeout,
	} {
		if d == "" {
			continue
		}
		if v, err := time.ParseDuration(d); err != nil || v < 0 {
			return fmt.Errorf("%w: server.%s %q", ErrInvalid, name, d)
		}
	}
	// The calculator treats 0 as "use the default", so it is not a setting.
	if c.Precision < 1 || c.Precision > 15 {
		return fmt.Errorf("%w: precision %d outside [1, 15]", ErrInvalid, c.Precision)
	}

	validLevel := false
	for _, l := range validLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("%w: logging.level %q (valid: %v)", ErrInvalid, c.Logging.Level, validLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format %q (valid: json, console)", ErrInvalid, c.Logging.Format)
	}
	return nil
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func (s ServerConfig) GetReadHeaderTimeout() time.Duration {
	return duration(s.ReadHeaderTimeout, 5*time.Second)
}
func (s ServerConfig) GetReadTimeout() time.Duration  { return duration(s.ReadTimeout, 15*time.Second) }
func (s ServerConfig) GetWriteTimeout() time.Duration { return duration(s.WriteTimeout, 15*time.Second) }
func (s ServerConfig) GetIdleTimeout() time.Duration  { return duration(s.IdleTimeout, 60*time.Second) }

// GetShutdownTimeout bounds graceful shutdown.
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return duration(s.ShutdownTimeout, 10*time.Second)
}

// CalculatorOptions maps the config onto scicalc.Options.
func (c *Config) CalculatorOptions() scicalc.Options {
	return scicalc.Options{Precision: c.Precision}
}
