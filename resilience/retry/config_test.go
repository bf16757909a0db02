//go:build unit

package retry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, 50*time.Millisecond, cfg.BaseBackoff)
	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.MaxElapsed)
	assert.InDelta(t, 100.0, cfg.JitterPercent, 0)
}

func TestPresetsAreValid(t *testing.T) {
	t.Parallel()

	for name, cfg := range map[string]Config{
		"default":    DefaultConfig(),
		"quick":      QuickConfig(),
		"persistent": PersistentConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, cfg.Validate())
			assert.Equal(t, cfg, cfg.withDefaults())
		})
	}

	assert.Less(t, QuickConfig().MaxElapsed, DefaultConfig().MaxElapsed)
	assert.Greater(t, PersistentConfig().MaxElapsed, DefaultConfig().MaxElapsed)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{name: "zero value", cfg: Config{}},
		{name: "jitter above 100", cfg: Config{JitterPercent: 250}},
		{name: "negative backoff", cfg: Config{BaseBackoff: -time.Millisecond}, wantField: "BaseBackoff"},
		{name: "negative attempts", cfg: Config{MaxAttempts: -1}, wantField: "MaxAttempts"},
		{name: "negative elapsed", cfg: Config{MaxElapsed: -time.Second}, wantField: "MaxElapsed"},
		{name: "negative jitter", cfg: Config{JitterPercent: -5}, wantField: "JitterPercent"},
		{name: "NaN jitter", cfg: Config{JitterPercent: math.NaN()}, wantField: "JitterPercent"},
		{name: "infinite jitter", cfg: Config{JitterPercent: math.Inf(1)}, wantField: "JitterPercent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultConfig(), Config{}.withDefaults())

	partial := Config{MaxAttempts: 3, JitterPercent: 50}.withDefaults()
	assert.Equal(t, 3, partial.MaxAttempts)
	assert.InDelta(t, 50.0, partial.JitterPercent, 0)
	assert.Equal(t, DefaultBaseBackoff, partial.BaseBackoff)
	assert.Equal(t, DefaultMaxElapsed, partial.MaxElapsed)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	ctrl, err := New(Config{MaxAttempts: -3})

	require.Error(t, err)
	assert.Nil(t, ctrl)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_ResolvesDefaults(t *testing.T) {
	t.Parallel()

	ctrl, err := New(Config{MaxAttempts: 4})
	require.NoError(t, err)

	cfg := ctrl.Config()
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, DefaultBaseBackoff, cfg.BaseBackoff)
	assert.Equal(t, DefaultMaxElapsed, cfg.MaxElapsed)
	assert.InDelta(t, DefaultJitterPercent, cfg.JitterPercent, 0)
}
