package engine

import (
	"errors"
	"fmt"

	"emberwatch/cinder/pkg/rules"
)

// ErrInvalidConfig indicates an invalid engine configuration.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config contains configuration for the evaluation engine.
type Config struct {
	// DefaultResult is returned when no rule matches a record. The
	// rule ID of the returned result is always the NO_RULE sentinel;
	// only the labels are configurable.
	// Default: NORMAL / "routine monitoring".
	DefaultResult rules.Result

	// EnableTrace logs a per-record trace summary at debug level.
	// Warning: enabling trace adds allocation overhead per record.
	// Default: false.
	EnableTrace bool

	// Metrics receives evaluation measurements. Nil disables
	// measurement.
	Metrics Observer
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultResult: rules.Result{
			Risk:   rules.DefaultRisk,
			Action: rules.DefaultAction,
		},
		EnableTrace: false,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.DefaultResult.Risk == "" {
		return fmt.Errorf("%w: default risk cannot be empty", ErrInvalidConfig)
	}
	if c.DefaultResult.Action == "" {
		return fmt.Errorf("%w: default action cannot be empty", ErrInvalidConfig)
	}
	return nil
}

// WithDefaultResult sets the result returned when no rule matches.
func (c *Config) WithDefaultResult(res rules.Result) *Config {
	c.DefaultResult = res
	return c
}

// WithTrace enables or disables per-record trace logging.
func (c *Config) WithTrace(enabled bool) *Config {
	c.EnableTrace = enabled
	return c
}

// WithMetrics sets the evaluation observer.
func (c *Config) WithMetrics(obs Observer) *Config {
	c.Metrics = obs
	return c
}
