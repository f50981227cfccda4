package config_test

import (
	"os"
	"testing"

	"github.com/estia-cy/estia/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultHostIsLocalhost(t *testing.T) {
	_ = os.Unsetenv("ESTIA_HOST")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host,
		"Default host must be 127.0.0.1 for security")
}

func TestLoadConfig_CanOverrideHost(t *testing.T) {
	t.Setenv("ESTIA_HOST", "0.0.0.0")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestLoadConfig_BackendDefaults verifies the primary source is active by
// default and uses the REST transport with sensible timeouts.
func TestLoadConfig_BackendDefaults(t *testing.T) {
	for _, key := range []string{"ESTIA_BACKEND_ACTIVE", "ESTIA_BACKEND_TRANSPORT", "ESTIA_BACKEND_TIMEOUT"} {
		_ = os.Unsetenv(key)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Backend.Active)
	assert.Equal(t, "rest", cfg.Backend.Transport)
	assert.Equal(t, 10, cfg.Backend.TimeoutSeconds)
}

func TestLoadConfig_BackendCanBeDisabled(t *testing.T) {
	t.Setenv("ESTIA_BACKEND_ACTIVE", "false")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Backend.Active)
}

// TestLoadConfig_ImportDefaults verifies the batch size of 50 the import
// tool relies on.
func TestLoadConfig_ImportDefaults(t *testing.T) {
	_ = os.Unsetenv("ESTIA_IMPORT_BATCH_SIZE")
	_ = os.Unsetenv("ESTIA_IMPORT_RATE")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, 2, cfg.Import.BatchesPerSecond)
}

func TestLoadConfig_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("ESTIA_PORT", "not-a-port")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 6380, cfg.Server.Port)
}

// TestRequireBackend covers the import tool's hard requirement on the two
// backend variables.
func TestRequireBackend(t *testing.T) {
	t.Setenv("ESTIA_BACKEND_URL", "")
	t.Setenv("ESTIA_BACKEND_KEY", "")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireBackend(), config.ErrMissingBackendConfig)

	t.Setenv("ESTIA_BACKEND_URL", "https://backend.example.com")
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireBackend(), config.ErrMissingBackendConfig,
		"URL alone is not enough, the key is required too")

	t.Setenv("ESTIA_BACKEND_KEY", "service-key")
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireBackend())
}
