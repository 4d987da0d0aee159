// Package holiday computes national, RS state and municipal holidays for
// the supported cities, locally or through an optional remote provider.
package holiday

import (
	"slices"
	"strings"
	"time"

	"github.com/neexbeast/clima-rs/internal/city"
)

// Options tunes the calculator.
type Options struct {
	// IncludeCorpusChristi adds Corpus Christi to the national set.
	IncludeCorpusChristi bool
	// Canonical maps a caller-supplied city name to its table key.
	// Defaults to city.Normalize.
	Canonical func(name string) city.Key
}

// Calculator produces holiday lists from static tables and the Easter date.
// It has no network dependencies and never fails.
type Calculator struct {
	tables *Tables
	opts   Options
}

// NewCalculator constructs a Calculator over tables.
func NewCalculator(tables *Tables, opts Options) *Calculator {
	if opts.Canonical == nil {
		opts.Canonical = city.Normalize
	}
	return &Calculator{tables: tables, opts: opts}
}

// HolidaysFor returns every holiday observed in cityName during year,
// without duplicates, in calendar order.
func (c *Calculator) HolidaysFor(cityName string, year int) []Holiday {
	list := make([]Holiday, 0, len(c.tables.National)+len(c.tables.State)+8)

	for _, e := range c.tables.National {
		list = append(list, Holiday{Date: e.Date, Title: e.Title, Kind: National})
	}
	list = append(list, Holiday{Date: DateOf(GoodFriday(year)), Title: "Sexta-feira Santa", Kind: National})
	if c.opts.IncludeCorpusChristi {
		list = append(list, Holiday{Date: DateOf(CorpusChristi(year)), Title: "Corpus Christi", Kind: National})
	}

	for _, e := range c.tables.State {
		list = append(list, Holiday{Date: e.Date, Title: e.Title, Kind: State})
	}

	name := strings.TrimSpace(cityName)
	for _, e := range c.tables.Municipal[c.opts.Canonical(name)] {
		list = append(list, Holiday{Date: e.Date, Title: e.Title, Kind: Municipal, City: name})
	}

	return Finalize(list)
}

// Lookup returns the first holiday falling on date's day and month.
func (c *Calculator) Lookup(cityName string, date time.Time) (Holiday, bool) {
	target := DateOf(date)
	for _, h := range c.HolidaysFor(cityName, date.Year()) {
		if h.Date == target {
			return h, true
		}
	}
	return Holiday{}, false
}

// IsHoliday reports whether date is a holiday in cityName.
func (c *Calculator) IsHoliday(cityName string, date time.Time) bool {
	_, ok := c.Lookup(cityName, date)
	return ok
}

// Describe returns the description of the holiday on date, if any.
func (c *Calculator) Describe(cityName string, date time.Time) (string, bool) {
	h, ok := c.Lookup(cityName, date)
	if !ok {
		return "", false
	}
	return h.Description(), true
}

type dedupeKey struct {
	date  Date
	title string
	kind  Kind
	city  string
}

// Finalize drops repeated (date, title, kind, city) tuples, keeping the first,
// and stable-sorts by month then day.
func Finalize(list []Holiday) []Holiday {
	seen := make(map[dedupeKey]struct{}, len(list))
	out := make([]Holiday, 0, len(list))
	for _, h := range list {
		k := dedupeKey{date: h.Date, title: h.Title, kind: h.Kind, city: h.City}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, h)
	}

	slices.SortStableFunc(out, func(a, b Holiday) int {
		switch {
		case a.Date.before(b.Date):
			return -1
		case b.Date.before(a.Date):
			return 1
		default:
			return 0
		}
	})
	return out
}
