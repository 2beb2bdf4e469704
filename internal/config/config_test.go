package config

import (
	"testing"
	"time"

	"medibot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATASET_PATH", "TEST_FRACTION", "SEED", "TOP_K", "PORT", "DATABASE_URL", "DIAGNOSIS_BACKEND_URL", "DIAGNOSIS_BACKEND_TIMEOUT", "DATASET_DELIMITER", "SWEEP_SEEDS", "SWEEP_WORKERS", "SWEEP_MAX_SEEDS", "SWEEP_MAX_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Eval.TestFraction)
	assert.Equal(t, int64(42), cfg.Eval.Seed)
	assert.Equal(t, 3, cfg.Eval.TopK)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ",", cfg.Dataset.Delimiter)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 100, cfg.Eval.SweepMaxSeeds)
	assert.Equal(t, 16, cfg.Eval.SweepMaxWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEST_FRACTION", "0.3")
	t.Setenv("SEED", "7")
	t.Setenv("DATASET_DELIMITER", ";")
	t.Setenv("DIAGNOSIS_BACKEND_TIMEOUT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Eval.TestFraction)
	assert.Equal(t, int64(7), cfg.Eval.Seed)
	assert.Equal(t, ";", cfg.Dataset.Delimiter)
	assert.Equal(t, 250*time.Millisecond, cfg.Backend.Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "fraction above one", env: map[string]string{"TEST_FRACTION": "1.5"}},
		{name: "fraction NaN", env: map[string]string{"TEST_FRACTION": "NaN"}},
		{name: "seeds above max", env: map[string]string{"SWEEP_SEEDS": "20", "SWEEP_MAX_SEEDS": "10"}},
		{name: "workers above max", env: map[string]string{"SWEEP_WORKERS": "8", "SWEEP_MAX_WORKERS": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
		})
	}
}
