package api

import (
	"context"
	"time"

	"github.com/neexbeast/clima-rs/internal/bulletin"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/climate"
	"github.com/neexbeast/clima-rs/internal/holiday"
	"github.com/neexbeast/clima-rs/internal/weather"
)

// CityDirectory lists the registered municipalities.
type CityDirectory interface {
	InMacroRegion(region city.MacroRegion) []city.Record
}

// WeatherSource fetches current conditions and forecasts.
type WeatherSource interface {
	Current(ctx context.Context, cityName string) (*weather.Snapshot, error)
	Forecast(ctx context.Context, cityName string, days int) (*weather.Forecast, error)
}

// DashboardCollector fetches snapshots for a batch of cities.
type DashboardCollector interface {
	Collect(ctx context.Context, region city.MacroRegion) ([]weather.Snapshot, error)
}

// TileSource proxies precipitation map tiles.
type TileSource interface {
	Enabled() bool
	Precipitation(ctx context.Context, z, x, y int) (*weather.Tile, error)
}

// HolidaySource answers holiday calendar queries.
type HolidaySource interface {
	HolidaysFor(ctx context.Context, cityName string, year int) ([]holiday.Holiday, holiday.Source)
	HolidaysInMonth(ctx context.Context, cityName string, year int, month time.Month) ([]holiday.Holiday, holiday.Source)
	Lookup(ctx context.Context, cityName string, date time.Time) (holiday.Holiday, bool)
}

// ClimateSource summarizes archived years.
type ClimateSource interface {
	YearForCity(ctx context.Context, cityName string, year int) (*climate.Report, error)
	YearAt(ctx context.Context, loc climate.GeoLocation, year int) (*climate.Report, error)
}

// LocationSearcher looks up places by name.
type LocationSearcher interface {
	Search(ctx context.Context, query string) ([]climate.GeoLocation, error)
}

// BulletinRepo stores bulletins.
type BulletinRepo = bulletin.Repository
