package weather

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/clima-rs/internal/city"
)

// DefaultDashboardConcurrency bounds the number of in-flight snapshot fetches.
const DefaultDashboardConcurrency = 4

// snapshotFetcher is the interface satisfied by Client.
type snapshotFetcher interface {
	Current(ctx context.Context, cityName string) (*Snapshot, error)
}

// cityLister is satisfied by *city.Registry.
type cityLister interface {
	InMacroRegion(region city.MacroRegion) []city.Record
}

// Dashboard collects snapshots for every registered city in parallel.
type Dashboard struct {
	weather snapshotFetcher
	cities  cityLister
	limit   int
	log     *slog.Logger
}

// NewDashboard constructs a Dashboard. A non-positive limit selects
// DefaultDashboardConcurrency.
func NewDashboard(w snapshotFetcher, cities cityLister, limit int, log *slog.Logger) *Dashboard {
	if limit <= 0 {
		limit = DefaultDashboardConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dashboard{weather: w, cities: cities, limit: limit, log: log}
}

// Collect fetches the current weather of every city in region ("" or "all"
// for every city). Failed cities are logged and omitted; the result keeps
// registry order.
func (d *Dashboard) Collect(ctx context.Context, region city.MacroRegion) ([]Snapshot, error) {
	records := d.cities.InMacroRegion(region)
	results := make([]*Snapshot, len(records))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					d.log.Error("dashboard fetch panicked", "city", rec.Name, "recover", r)
				}
			}()
			snap, fetchErr := d.weather.Current(gCtx, rec.Name)
			if fetchErr != nil {
				d.log.Warn("dashboard fetch failed", "city", rec.Name, "err", fetchErr)
				return nil
			}
			results[i] = snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collecting dashboard: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collecting dashboard: %w", err)
	}

	out := make([]Snapshot, 0, len(records))
	for _, s := range results {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}
