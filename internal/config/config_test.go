package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 5, cfg.Backend.MaxFailures)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ReviewCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Debug)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_RejectsNonPositiveBreaker(t *testing.T) {
	t.Setenv("BREAKER_MAX_FAILURES", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveSessionDurations(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"SESSION_SWEEP_INTERVAL", "0s"},
		{"SESSION_SWEEP_INTERVAL", "-1m"},
		{"SESSION_IDLE_TIMEOUT", "0s"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.ErrorContains(t, err, tc.key)
		})
	}
}
