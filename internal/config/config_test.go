package config_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/clima-rs/internal/config"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.DashboardConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.IncludeCorpusChristi)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Zero(t, cfg.DBMaxConns)
	assert.False(t, cfg.AdminAuthConfigured())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(envOf(map[string]string{
		"PORT":                   "9000",
		"OPENWEATHER_API_KEY":    "  owm-key  ",
		"FERIADOS_API_KEY":       "fer-key",
		"DATABASE_URL":           "postgres://localhost/clima",
		"DB_MAX_CONNS":           "12",
		"REDIS_URL":              "redis://localhost:6379/0",
		"ADMIN_JWT_SECRET":       "s3cret",
		"HTTP_TIMEOUT":           "3s",
		"DASHBOARD_CONCURRENCY":  "8",
		"INCLUDE_CORPUS_CHRISTI": "false",
		"SESSION_TTL":            "5m",
		"CITIES_FILE":            "/etc/clima/cities.yaml",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "owm-key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "fer-key", cfg.FeriadosAPIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8, cfg.DashboardConcurrency)
	assert.Equal(t, 12, cfg.DBMaxConns)
	assert.False(t, cfg.IncludeCorpusChristi)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "/etc/clima/cities.yaml", cfg.CitiesFile)
	assert.True(t, cfg.AdminAuthConfigured())
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":           "soon",
		"SESSION_TTL":            "-1m",
		"DASHBOARD_CONCURRENCY":  "0",
		"DB_MAX_CONNS":           "-3",
		"INCLUDE_CORPUS_CHRISTI": "talvez",
	}
	for key, value := range cases {
		_, err := config.FromEnv(envOf(map[string]string{key: value}))
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("ADMIN_TOKEN", "tok")

	cfg, err := config.Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "tok", cfg.AdminToken)
}
