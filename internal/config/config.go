// Package config loads archetype configuration.
//
// Values come from built-in defaults, then an optional YAML file, then
// ARCHETYPE_* environment variables, each layer overriding the previous.
package config

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/archetype/internal/classifier"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/telemetry"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the complete archetype configuration.
type Config struct {
	Classification classifier.Parameters `koanf:"classification"`
	Logging        logging.Config        `koanf:"logging"`
	Telemetry      telemetry.Config      `koanf:"telemetry"`
	Bank           BankConfig            `koanf:"bank"`
	Watch          WatchConfig           `koanf:"watch"`
}

// BankConfig holds knowledge bank settings.
type BankConfig struct {
	// Metrics registers the bank's Prometheus collectors.
	Metrics bool `koanf:"metrics"`
}

// WatchConfig controls config file hot reload.
type WatchConfig struct {
	// Debounce coalesces bursts of writes (editors often write twice).
	Debounce Duration `koanf:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Classification: classifier.DefaultParameters(),
		Logging:        *logging.NewDefaultConfig(),
		Telemetry:      *telemetry.NewDefaultConfig(),
		Bank: BankConfig{
			Metrics: true,
		},
		Watch: WatchConfig{
			Debounce: Duration(defaultDebounce),
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Classification.Validate(); err != nil {
		return fmt.Errorf("%w: classification: %w", ErrInvalidConfig, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %w", ErrInvalidConfig, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %w", ErrInvalidConfig, err)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Parameters returns the classification parameters.
func (c *Config) Parameters() classifier.Parameters {
	return c.Classification
}
