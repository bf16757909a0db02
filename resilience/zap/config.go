package zap

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerSkipFrames = 1

// Environment controls the baseline logger profile.
type Environment string

// Supported environments.
const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
	EnvironmentLocal       Environment = "local"
)

// Config contains the logger initialization inputs.
type Config struct {
	Environment Environment
	// Level overrides the environment default ("debug", "info", "warn", "error").
	Level string
	// OTelLibraryName names the instrumentation scope of the otelzap bridge.
	OTelLibraryName string
}

func (c Config) validate() error {
	if strings.TrimSpace(c.OTelLibraryName) == "" {
		return fmt.Errorf("OTelLibraryName is required")
	}

	switch c.Environment {
	case EnvironmentProduction, EnvironmentStaging, EnvironmentDevelopment, EnvironmentLocal:
		return nil
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
}

func (c Config) isVerbose() bool {
	return c.Environment == EnvironmentDevelopment || c.Environment == EnvironmentLocal
}

// New builds a JSON zap logger for cfg.Environment, tees it into the
// OpenTelemetry logs bridge, and returns it as a log.Logger adapter.
func New(cfg Config) (*Logger, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid zap config: %w", err)
	}

	level, err := resolveLevel(cfg)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.isVerbose() {
		zapCfg = zap.NewDevelopmentConfig()
	}

	zapCfg.Encoding = "json"
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.Level = level
	zapCfg.DisableStacktrace = true

	built, err := zapCfg.Build(
		zap.AddCallerSkip(callerSkipFrames),
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelzap.NewCore(cfg.OTelLibraryName))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{logger: built, atomicLevel: level}, nil
}

func resolveLevel(cfg Config) (zap.AtomicLevel, error) {
	if strings.TrimSpace(cfg.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(cfg.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", cfg.Level, err)
		}

		return zap.NewAtomicLevelAt(parsed), nil
	}

	if cfg.isVerbose() {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}

	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}
