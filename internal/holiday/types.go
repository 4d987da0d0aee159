package holiday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the jurisdiction that observes a holiday.
type Kind string

const (
	National  Kind = "national"
	State     Kind = "state"
	Municipal Kind = "municipal"
)

// Label returns the pt-BR name of the kind.
func (k Kind) Label() string {
	switch k {
	case National:
		return "nacional"
	case State:
		return "estadual"
	case Municipal:
		return "municipal"
	default:
		return string(k)
	}
}

// Date is a calendar day without a year.
type Date struct {
	Day   int        `json:"day"`
	Month time.Month `json:"month"`
}

// DateOf drops the year of t.
func DateOf(t time.Time) Date {
	return Date{Day: t.Day(), Month: t.Month()}
}

// ParseDate parses "DD/MM".
func ParseDate(s string) (Date, error) {
	dd, mm, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Date{}, fmt.Errorf("date %q: want DD/MM", s)
	}
	day, err := strconv.Atoi(dd)
	if err != nil {
		return Date{}, fmt.Errorf("date %q: bad day: %w", s, err)
	}
	month, err := strconv.Atoi(mm)
	if err != nil {
		return Date{}, fmt.Errorf("date %q: bad month: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("date %q: out of range", s)
	}
	return Date{Day: day, Month: time.Month(month)}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d", d.Day, int(d.Month))
}

// before orders dates by calendar position within a single year.
func (d Date) before(o Date) bool {
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Holiday is one observed day off. City is set only for municipal holidays.
type Holiday struct {
	Date  Date   `json:"date"`
	Title string `json:"title"`
	Kind  Kind   `json:"kind"`
	City  string `json:"city,omitempty"`
}

// Description renders "title (kind)" or "title (kind - city)".
func (h Holiday) Description() string {
	if h.City != "" {
		return fmt.Sprintf("%s (%s - %s)", h.Title, h.Kind.Label(), h.City)
	}
	return fmt.Sprintf("%s (%s)", h.Title, h.Kind.Label())
}
