// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort                 = "8080"
	defaultHTTPTimeout          = 10 * time.Second
	defaultDashboardConcurrency = 4
	defaultSessionTTL           = 30 * time.Minute
)

// Config holds every runtime setting. Empty credentials disable the feature
// that needs them rather than failing startup.
type Config struct {
	Port string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	FeriadosAPIKey string
	FeriadosAPIURL string

	DatabaseURL string
	// DBMaxConns caps the PostgreSQL pool; zero keeps the pgxpool default.
	DBMaxConns int
	RedisURL   string

	AdminToken     string
	AdminJWTSecret string

	HTTPTimeout          time.Duration
	DashboardConcurrency int
	IncludeCorpusChristi bool
	SessionTTL           time.Duration

	// CitiesFile and HolidaysFile replace the embedded tables when set.
	CitiesFile   string
	HolidaysFile string
}

// Load reads a .env file from the working directory when present, then
// parses the process environment. Variables already set in the environment
// win over the file.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
		log.Info("no .env file found, using process environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		Port:               e.str("PORT", defaultPort),
		OpenWeatherAPIKey:  e.str("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL: e.str("OPENWEATHER_BASE_URL", ""),
		FeriadosAPIKey:     e.str("FERIADOS_API_KEY", ""),
		FeriadosAPIURL:     e.str("FERIADOS_API_URL", ""),
		DatabaseURL:        e.str("DATABASE_URL", ""),
		RedisURL:           e.str("REDIS_URL", ""),
		AdminToken:         e.str("ADMIN_TOKEN", ""),
		AdminJWTSecret:     e.str("ADMIN_JWT_SECRET", ""),
		CitiesFile:         e.str("CITIES_FILE", ""),
		HolidaysFile:       e.str("HOLIDAYS_FILE", ""),
	}

	var err error
	if cfg.HTTPTimeout, err = e.duration("HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = e.duration("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.DashboardConcurrency, err = e.positiveInt("DASHBOARD_CONCURRENCY", defaultDashboardConcurrency); err != nil {
		return nil, err
	}
	if cfg.DBMaxConns, err = e.positiveInt("DB_MAX_CONNS", 0); err != nil {
		return nil, err
	}
	if cfg.IncludeCorpusChristi, err = e.boolean("INCLUDE_CORPUS_CHRISTI", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AdminAuthConfigured reports whether any admin credential is set.
func (c *Config) AdminAuthConfigured() bool {
	return c.AdminJWTSecret != "" || c.AdminToken != ""
}

type env struct {
	getenv func(string) string
}

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e env) duration(key string, def time.Duration) (time.Duration, error) {
	v := e.str(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func (e env) positiveInt(key string, def int) (int, error) {
	v := e.str(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1", key)
	}
	return n, nil
}

func (e env) boolean(key string, def bool) (bool, error) {
	v := e.str(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
