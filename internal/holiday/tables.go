package holiday

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/neexbeast/clima-rs/internal/city"
)

//go:embed data/holidays.yaml
var defaultTables []byte

// Entry is a fixed-date holiday row.
type Entry struct {
	Date  Date
	Title string
}

// Tables holds the fixed-date holiday data. Municipal rows are keyed by
// city.Normalize of the municipality name.
type Tables struct {
	National  []Entry
	State     []Entry
	Municipal map[city.Key][]Entry
}

type rawEntry struct {
	Date  string `yaml:"date"`
	Title string `yaml:"title"`
}

type tablesFile struct {
	National  []rawEntry            `yaml:"national"`
	State     []rawEntry            `yaml:"state"`
	Municipal map[string][]rawEntry `yaml:"municipal"`
}

// DefaultTables returns the embedded holiday tables.
func DefaultTables() *Tables {
	t, err := LoadTables(bytes.NewReader(defaultTables))
	if err != nil {
		panic(fmt.Sprintf("embedded holiday table is invalid: %v", err))
	}
	return t
}

// LoadTables parses a YAML holiday table.
func LoadTables(r io.Reader) (*Tables, error) {
	var file tablesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding holiday table: %w", err)
	}

	national, err := convertEntries(file.National)
	if err != nil {
		return nil, fmt.Errorf("national holidays: %w", err)
	}
	state, err := convertEntries(file.State)
	if err != nil {
		return nil, fmt.Errorf("state holidays: %w", err)
	}

	municipal := make(map[city.Key][]Entry, len(file.Municipal))
	for name, rows := range file.Municipal {
		key := city.Normalize(name)
		if _, dup := municipal[key]; dup {
			return nil, fmt.Errorf("municipal holidays: %s listed twice", key)
		}
		entries, err := convertEntries(rows)
		if err != nil {
			return nil, fmt.Errorf("municipal holidays for %s: %w", name, err)
		}
		municipal[key] = entries
	}

	return &Tables{National: national, State: state, Municipal: municipal}, nil
}

func convertEntries(rows []rawEntry) ([]Entry, error) {
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		d, err := ParseDate(row.Date)
		if err != nil {
			return nil, err
		}
		if row.Title == "" {
			return nil, fmt.Errorf("entry %s has no title", row.Date)
		}
		out = append(out, Entry{Date: d, Title: row.Title})
	}
	return out, nil
}
