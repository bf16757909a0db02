package retry

import (
	"fmt"
	"math"
	"time"
)

// Default values applied to zero Config fields.
const (
	DefaultBaseBackoff   = 50 * time.Millisecond
	DefaultMaxAttempts   = 10
	DefaultMaxElapsed    = 10 * time.Second
	DefaultJitterPercent = 100.0
)

// Config bounds a retry sequence. Zero fields resolve to their defaults,
// negative fields are rejected by New.
type Config struct {
	BaseBackoff   time.Duration // Unit scaled by 2^attempt to build the delay ceiling
	MaxAttempts   int           // Maximum number of operation invocations
	MaxElapsed    time.Duration // Maximum wall-clock time since the first attempt
	JitterPercent float64       // Percentage applied to the ceiling; may exceed 100
}

// DefaultConfig provides balanced settings for most operations
func DefaultConfig() Config {
	return Config{
		BaseBackoff:   DefaultBaseBackoff,
		MaxAttempts:   DefaultMaxAttempts,
		MaxElapsed:    DefaultMaxElapsed,
		JitterPercent: DefaultJitterPercent,
	}
}

// QuickConfig for startup probes and interactive paths that must fail fast
func QuickConfig() Config {
	return Config{
		BaseBackoff:   10 * time.Millisecond,
		MaxAttempts:   5,
		MaxElapsed:    2 * time.Second,
		JitterPercent: DefaultJitterPercent,
	}
}

// PersistentConfig for long-lived critical dependencies such as brokers and
// databases, where waiting is preferable to giving up
func PersistentConfig() Config {
	return Config{
		BaseBackoff:   500 * time.Millisecond,
		MaxAttempts:   30,
		MaxElapsed:    5 * time.Minute,
		JitterPercent: DefaultJitterPercent,
	}
}

// Validate reports the first invalid field as a *ConfigurationError.
func (cfg Config) Validate() error {
	switch {
	case cfg.BaseBackoff < 0:
		return invalidConfig("BaseBackoff", fmt.Sprintf("must not be negative, got %s", cfg.BaseBackoff))
	case cfg.MaxAttempts < 0:
		return invalidConfig("MaxAttempts", fmt.Sprintf("must not be negative, got %d", cfg.MaxAttempts))
	case cfg.MaxElapsed < 0:
		return invalidConfig("MaxElapsed", fmt.Sprintf("must not be negative, got %s", cfg.MaxElapsed))
	case math.IsNaN(cfg.JitterPercent) || math.IsInf(cfg.JitterPercent, 0):
		return invalidConfig("JitterPercent", "must be a finite number")
	case cfg.JitterPercent < 0:
		return invalidConfig("JitterPercent", fmt.Sprintf("must not be negative, got %g", cfg.JitterPercent))
	}

	return nil
}

// withDefaults fills zero fields with the package defaults.
func (cfg Config) withDefaults() Config {
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = DefaultBaseBackoff
	}

	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = DefaultMaxElapsed
	}

	if cfg.JitterPercent == 0 {
		cfg.JitterPercent = DefaultJitterPercent
	}

	return cfg
}
