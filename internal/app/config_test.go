package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REPORT_TIMEZONE", "UTC")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendHTTP, cfg.StoreBackend)
	assert.Equal(t, "http://localhost:5000", cfg.StoreURL)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoadConfigRejectsRelativeStoreURL(t *testing.T) {
	t.Setenv("STORE_URL", "localhost:5000/api")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_TIMEZONE")
}

func TestPostgresBackendNeedsDSN(t *testing.T) {
	t.Setenv("STORE_BACKEND", StoreBackendPostgres)
	t.Setenv("PG_DSN", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestNilConfigLocationFallsBackToLocal(t *testing.T) {
	var cfg *Config
	assert.Equal(t, time.Local, cfg.Location())
}
