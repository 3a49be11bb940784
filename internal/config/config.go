// Package config loads solarsplit settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/provide-io/solarsplit/pkg/autosplit"
	"github.com/provide-io/solarsplit/pkg/layout"
)

// Config is everything the run command needs.
type Config struct {
	autosplit.Settings

	ProcessName   string        `env:"SOLARSPLIT_PROCESS"`
	ModuleName    string        `env:"SOLARSPLIT_MODULE"`
	TickRate      float64       `env:"SOLARSPLIT_TICK_RATE" envDefault:"120"`
	RetryInterval time.Duration `env:"SOLARSPLIT_RETRY_INTERVAL" envDefault:"1s"`

	LogLevel string `env:"SOLARSPLIT_LOG_LEVEL" envDefault:"warn"`
	JSONLog  bool   `env:"SOLARSPLIT_JSON_LOG"`
}

var (
	ErrInvalidTickRate      = errors.New("❌ tick rate must be positive")
	ErrInvalidRetryInterval = errors.New("❌ retry interval must be positive")
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.ProcessName == "" {
		cfg.ProcessName = layout.ProcessName
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = layout.ModuleName
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loop timings.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTickRate, c.TickRate)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRetryInterval, c.RetryInterval)
	}
	return nil
}

// TickInterval converts TickRate to a period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

// Options returns the splitter loop options.
func (c Config) Options() autosplit.Options {
	return autosplit.Options{
		ProcessName:   c.ProcessName,
		ModuleName:    c.ModuleName,
		TickInterval:  c.TickInterval(),
		RetryInterval: c.RetryInterval,
	}
}
