package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/clima-rs/internal/api"
	"github.com/neexbeast/clima-rs/internal/bulletin"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/climate"
	"github.com/neexbeast/clima-rs/internal/config"
	"github.com/neexbeast/clima-rs/internal/holiday"
	"github.com/neexbeast/clima-rs/internal/session"
	"github.com/neexbeast/clima-rs/internal/storage"
	"github.com/neexbeast/clima-rs/internal/weather"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// pinger is satisfied by *pgxpool.Pool and redisPingerAdapter.
type pinger interface {
	Ping(ctx context.Context) error
}

func run(log *slog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	registry, err := loadRegistry(cfg.CitiesFile)
	if err != nil {
		return err
	}
	tables, err := loadHolidayTables(cfg.HolidaysFile)
	if err != nil {
		return err
	}
	log.Info("static tables loaded", "cities", len(registry.Cities()), "corpus_christi", cfg.IncludeCorpusChristi)

	// Bulletins: PostgreSQL when configured, process memory otherwise.
	var (
		bulletins bulletin.Repository
		dbPing    pinger
	)
	if cfg.DatabaseURL != "" {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		if err := storage.RunMigrations(ctx, pool, storage.Migrations()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")

		bulletins = storage.NewBulletinRepository(pool)
		dbPing = pool
	} else {
		log.Warn("DATABASE_URL not set, bulletins are kept in memory")
		bulletins = bulletin.NewMemoryRepository()
	}

	// Session generations: Redis when configured, process memory otherwise.
	var (
		sessions  session.Tracker
		redisPing pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := session.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		sessions = session.NewRedisTracker(redisClient, cfg.SessionTTL)
		redisPing = &redisPingerAdapter{client: redisClient}
	} else {
		log.Warn("REDIS_URL not set, session generations are tracked in memory")
		sessions = session.NewMemoryTracker(cfg.SessionTTL)
	}

	// Wire dependencies.
	weatherClient := weather.NewClientWithURL(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, registry, cfg.HTTPTimeout)
	if !weatherClient.Enabled() {
		log.Warn("OPENWEATHER_API_KEY not set, weather endpoints will report configuration_missing")
	}
	remoteHolidays := holiday.NewRemoteClient(cfg.FeriadosAPIURL, cfg.FeriadosAPIKey, cfg.HTTPTimeout)
	if remoteHolidays.Enabled() {
		log.Info("remote holiday provider enabled")
	}
	calculator := holiday.NewCalculator(tables, holiday.Options{
		IncludeCorpusChristi: cfg.IncludeCorpusChristi,
		Canonical:            registry.CanonicalKey,
	})
	climateClient := climate.NewClient(cfg.HTTPTimeout)

	handlers := api.NewHandlers(api.Deps{
		Cities:    registry,
		Weather:   weatherClient,
		Dashboard: weather.NewDashboard(weatherClient, registry, cfg.DashboardConcurrency, log),
		Tiles:     weather.NewTileProxy(cfg.OpenWeatherAPIKey, cfg.HTTPTimeout),
		Holidays:  holiday.NewService(calculator, remoteHolidays, registry, log),
		Climate:   climate.NewService(climateClient, registry),
		Locations: climateClient,
		Bulletins: bulletins,
		Sessions:  sessions,
	}, log)

	if !cfg.AdminAuthConfigured() {
		log.Warn("no admin credential set, admin routes are disabled")
	}
	admin := api.AdminCredentials{JWTSecret: cfg.AdminJWTSecret, Token: cfg.AdminToken}
	router := api.NewRouter(handlers, admin, dbPing, redisPing, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

func loadRegistry(path string) (*city.Registry, error) {
	if path == "" {
		return city.DefaultRegistry(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cities file: %w", err)
	}
	defer f.Close()

	r, err := city.LoadRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("loading cities file %s: %w", path, err)
	}
	return r, nil
}

func loadHolidayTables(path string) (*holiday.Tables, error) {
	if path == "" {
		return holiday.DefaultTables(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening holidays file: %w", err)
	}
	defer f.Close()

	t, err := holiday.LoadTables(f)
	if err != nil {
		return nil, fmt.Errorf("loading holidays file %s: %w", path, err)
	}
	return t, nil
}

// redisPingerAdapter adapts redis.Client to the health check pinger.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
