package climate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
)

// FirstArchiveYear is the earliest year the archive covers.
const FirstArchiveYear = 1940

const overrideTimezone = "America/Sao_Paulo"

// cityLookup is satisfied by *city.Registry.
type cityLookup interface {
	Lookup(name string) (city.Record, bool)
}

// archiveSource is the interface satisfied by Client.
type archiveSource interface {
	Search(ctx context.Context, query string) ([]GeoLocation, error)
	Archive(ctx context.Context, lat, lon float64, timezone string, year int) ([]DailySample, error)
}

// Service builds yearly climate reports for registered cities or raw coordinates.
type Service struct {
	source archiveSource
	cities cityLookup
	now    func() time.Time
}

// NewService constructs a Service. cities may be nil.
func NewService(source archiveSource, cities cityLookup) *Service {
	return &Service{source: source, cities: cities, now: time.Now}
}

// YearForCity resolves cityName to a location and summarizes year there.
// Registry coordinate overrides win; otherwise the first Brazilian
// geocoding match is used.
func (s *Service) YearForCity(ctx context.Context, cityName string, year int) (*Report, error) {
	name := strings.TrimSpace(cityName)
	if name == "" {
		return nil, apperr.Validation("climate for city", "city name is required")
	}
	if err := s.checkYear(year); err != nil {
		return nil, err
	}

	loc, err := s.locate(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, loc, year)
}

// YearAt summarizes year at the given coordinates.
func (s *Service) YearAt(ctx context.Context, loc GeoLocation, year int) (*Report, error) {
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, apperr.Validation("climate at coordinates", fmt.Sprintf("invalid position %f,%f", loc.Latitude, loc.Longitude))
	}
	if err := s.checkYear(year); err != nil {
		return nil, err
	}
	return s.report(ctx, loc, year)
}

func (s *Service) report(ctx context.Context, loc GeoLocation, year int) (*Report, error) {
	samples, err := s.source.Archive(ctx, loc.Latitude, loc.Longitude, loc.Timezone, year)
	if err != nil {
		return nil, err
	}
	return &Report{Location: loc, Summary: Summarize(year, samples)}, nil
}

func (s *Service) locate(ctx context.Context, name string) (GeoLocation, error) {
	if s.cities != nil {
		if rec, ok := s.cities.Lookup(name); ok && rec.Coordinates != nil {
			return GeoLocation{
				Name:        rec.Name,
				Country:     "Brasil",
				CountryCode: "BR",
				Admin1:      "Rio Grande do Sul",
				Latitude:    rec.Coordinates.Lat,
				Longitude:   rec.Coordinates.Lon,
				Timezone:    overrideTimezone,
			}, nil
		}
	}

	matches, err := s.source.Search(ctx, name)
	if err != nil {
		return GeoLocation{}, err
	}
	for _, m := range matches {
		if strings.EqualFold(m.CountryCode, "BR") {
			return m, nil
		}
	}
	return GeoLocation{}, apperr.New(apperr.KindNotFound, "climate for city", fmt.Errorf("no Brazilian location named %q", name))
}

func (s *Service) checkYear(year int) error {
	current := s.now().Year()
	if year < FirstArchiveYear || year > current {
		return apperr.Validation("climate year", fmt.Sprintf("year must be between %d and %d, got %d", FirstArchiveYear, current, year))
	}
	return nil
}
