// Package config loads napkin settings from defaults, an optional TOML or
// YAML file, a .env file and NAPKIN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/oarkflow/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NAPKIN_SERVE_ADDR.
const EnvPrefix = "NAPKIN_"

// Config holds the complete application configuration
type Config struct {
	Log   LogConfig   `toml:"log" yaml:"log"`
	REPL  REPLConfig  `toml:"repl" yaml:"repl"`
	Serve ServeConfig `toml:"serve" yaml:"serve"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

type REPLConfig struct {
	Prompt string `toml:"prompt" yaml:"prompt"`
	Color  bool   `toml:"color" yaml:"color"`
}

// ServeConfig configures the remote REPL server.
type ServeConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	JWTSecret    string   `toml:"jwt_secret" yaml:"jwt_secret"`
	PasswordHash string   `toml:"password_hash" yaml:"password_hash"`
	TokenTTL     Duration `toml:"token_ttl" yaml:"token_ttl"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		REPL: REPLConfig{
			Prompt: "napkin> ",
			Color:  true,
		},
		Serve: ServeConfig{
			Addr:     "127.0.0.1:7777",
			TokenTTL: Duration{Duration: time.Hour},
		},
	}
}

// Load builds the configuration. path may be empty; a .env file in the
// working directory is read when present.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

// LoadWithEnvFile is Load with an explicit .env location. A missing env
// file is not an error.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(os.ExpandEnv(path)); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("REPL_PROMPT"); ok {
		c.REPL.Prompt = v
	}
	if v, ok := lookup("REPL_COLOR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sREPL_COLOR: %w", EnvPrefix, err)
		}
		c.REPL.Color = b
	}
	if v, ok := lookup("SERVE_ADDR"); ok {
		c.Serve.Addr = v
	}
	if v, ok := lookup("SERVE_JWT_SECRET"); ok {
		c.Serve.JWTSecret = v
	}
	if v, ok := lookup("SERVE_PASSWORD_HASH"); ok {
		c.Serve.PasswordHash = v
	}
	if v, ok := lookup("SERVE_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSERVE_TOKEN_TTL: %w", EnvPrefix, err)
		}
		c.Serve.TokenTTL = Duration{Duration: d}
	}
	return nil
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

var levels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
}

// Validate checks settings used by every command.
func (c *Config) Validate() error {
	if !levels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Serve.TokenTTL.Duration <= 0 {
		return fmt.Errorf("serve.token_ttl must be positive, got %s", c.Serve.TokenTTL.Duration)
	}
	return nil
}

// ValidateServe checks the settings the remote REPL cannot start without.
func (c *Config) ValidateServe() error {
	if c.Serve.Addr == "" {
		return errors.New("serve.addr is required")
	}
	if c.Serve.JWTSecret == "" {
		return errors.New("serve.jwt_secret is required")
	}
	if c.Serve.PasswordHash == "" {
		return errors.New("serve.password_hash is required; generate one with 'napkin hash-password'")
	}
	return nil
}

// Logger returns a logger writing at the configured level.
func (c *Config) Logger() *log.Logger {
	logger := log.DefaultLogger
	logger.Level = log.ParseLevel(strings.ToLower(c.Log.Level))
	return &logger
}
