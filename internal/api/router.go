package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/neexbeast/clima-rs/internal/weather"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Public routes are unauthenticated; bulletin writes sit behind AdminAuth.
// Rate limiting is applied globally: 60 requests per minute per IP.
// db and redis may be nil when those backends are not configured.
func NewRouter(handlers *Handlers, admin AdminCredentials, db, redis pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redis, log))

	r.Get("/api/v1/cities", handlers.ListCities)
	r.Route("/api/v1/cities/{city}", func(r chi.Router) {
		r.Get("/weather", handlers.GetWeather)
		r.Get("/forecast", handlers.GetForecast)
		r.Get("/holidays", handlers.ListHolidays)
		r.Get("/holidays/check", handlers.CheckHoliday)
		r.Get("/climate", handlers.GetCityClimate)
	})
	r.Get("/api/v1/dashboard", handlers.GetDashboard)

	r.Get("/api/v1/climate/search", handlers.SearchLocations)
	r.Get("/api/v1/climate/archive", handlers.GetArchiveClimate)

	r.Get("/api/v1/map/layers", handlers.GetMapLayers)
	r.Get(weather.PrecipitationTilePath, handlers.GetPrecipitationTile)

	r.Get("/api/v1/bulletins", handlers.ListBulletins)
	r.Get("/api/v1/bulletins/{id}", handlers.GetBulletin)

	r.Group(func(r chi.Router) {
		r.Use(AdminAuth(admin, handlers))
		r.Post("/api/v1/admin/bulletins", handlers.CreateBulletin)
		r.Put("/api/v1/admin/bulletins/{id}", handlers.UpdateBulletin)
		r.Delete("/api/v1/admin/bulletins/{id}", handlers.DeleteBulletin)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
