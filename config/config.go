/*
Package config loads server configuration.

PRECEDENCE (lowest to highest):
  1. Defaults (Default)
  2. TOML file (planner.toml)
  3. .env file in the working directory
  4. Environment variables
  5. Command-line flags (applied by cmd/server)

ENVIRONMENT:
  PLANNER_PORT               HTTP port
  PLANNER_DB                 SQLite database file
  PLANNER_AUTOSAVE_INTERVAL  Autosave check interval ("30s", "2m")
  PLANNER_LOG_LEVEL          debug, info, warn, error
  PLANNER_SEED               Scenario to load when nothing was saved yet

EXAMPLE FILE:
  [server]
  port = 8080
  allowed_origins = ["http://localhost:5173"]

  [storage]
  db_path = "./data/planner.db"

  [autosave]
  enabled = true
  interval = "30s"

  [log]
  level = "info"
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Autosave AutosaveConfig `toml:"autosave"`
	Log      LogConfig      `toml:"log"`
	Seed     SeedConfig     `toml:"seed"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type AutosaveConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// SeedConfig names the scenario loaded on first start.
type SeedConfig struct {
	Scenario string `toml:"scenario,omitempty"`
}

// Duration is a time.Duration written as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Storage:  StorageConfig{DBPath: "planner.db"},
		Autosave: AutosaveConfig{Enabled: true, Interval: Duration{Duration: 30 * time.Second}},
		Log:      LogConfig{Level: "info"},
	}
}

// Load applies the TOML file at path (skipped when empty or missing), the
// .env files (default ".env") and the environment on top of the defaults.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	// godotenv never overrides variables already set
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var problems []string

	if v := os.Getenv("PLANNER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("PLANNER_PORT %q: must be a number", v))
		} else {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PLANNER_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("PLANNER_AUTOSAVE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("PLANNER_AUTOSAVE_INTERVAL %q: %v", v, err))
		} else {
			c.Autosave.Interval = Duration{Duration: d}
		}
	}
	if v := os.Getenv("PLANNER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PLANNER_SEED"); v != "" {
		c.Seed.Scenario = v
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid environment:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Validate validates the configuration and returns every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Storage.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	} else if c.Storage.DBPath == ":memory:" {
		problems = append(problems, "database path must be a file, not :memory:")
	}
	if c.Autosave.Enabled && c.Autosave.Interval.Duration <= 0 {
		problems = append(problems, fmt.Sprintf("invalid autosave interval %s: must be positive", c.Autosave.Interval))
	}
	if _, err := c.LogLevel(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: use debug, info, warn or error", c.Log.Level)
	}
	return lvl, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
