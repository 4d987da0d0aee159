package holiday

import (
	"context"
	"log/slog"
	"time"
)

// ibgeResolver is satisfied by *city.Registry.
type ibgeResolver interface {
	IBGECode(name string) (string, bool)
}

// remoteFetcher is satisfied by *RemoteClient.
type remoteFetcher interface {
	Enabled() bool
	Fetch(ctx context.Context, ibge, cityName string, year int) ([]Holiday, error)
}

// Service answers holiday queries. The local Calculator is the engine; the
// remote provider, when enabled and the city has an IBGE code, is consulted
// first and any failure falls back to the local result.
type Service struct {
	local  *Calculator
	remote remoteFetcher
	codes  ibgeResolver
	log    *slog.Logger
}

// NewService constructs a Service. remote may be nil.
func NewService(local *Calculator, remote remoteFetcher, codes ibgeResolver, log *slog.Logger) *Service {
	return &Service{local: local, remote: remote, codes: codes, log: log}
}

// Source names where a holiday list came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// HolidaysFor returns the holiday list for cityName and year.
func (s *Service) HolidaysFor(ctx context.Context, cityName string, year int) ([]Holiday, Source) {
	if s.remote != nil && s.remote.Enabled() && s.codes != nil {
		if ibge, ok := s.codes.IBGECode(cityName); ok {
			list, err := s.remote.Fetch(ctx, ibge, cityName, year)
			if err == nil {
				return list, SourceRemote
			}
			s.log.Warn("remote holiday fetch failed, using local tables", "city", cityName, "year", year, "err", err)
		}
	}
	return s.local.HolidaysFor(cityName, year), SourceLocal
}

// HolidaysInMonth filters HolidaysFor to one month.
func (s *Service) HolidaysInMonth(ctx context.Context, cityName string, year int, month time.Month) ([]Holiday, Source) {
	all, src := s.HolidaysFor(ctx, cityName, year)
	var out []Holiday
	for _, h := range all {
		if h.Date.Month == month {
			out = append(out, h)
		}
	}
	return out, src
}

// Lookup returns the first holiday on date's day and month.
func (s *Service) Lookup(ctx context.Context, cityName string, date time.Time) (Holiday, bool) {
	target := DateOf(date)
	list, _ := s.HolidaysFor(ctx, cityName, date.Year())
	for _, h := range list {
		if h.Date == target {
			return h, true
		}
	}
	return Holiday{}, false
}
