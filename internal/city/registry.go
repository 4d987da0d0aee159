// Package city holds the registry of supported municipalities: canonical
// names, macro-region grouping, IBGE codes and coordinate overrides.
package city

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed data/cities.yaml
var defaultCities []byte

// MacroRegion is a coarse grouping used for filtering the city list.
type MacroRegion string

const (
	GO1 MacroRegion = "GO1"
	GO2 MacroRegion = "GO2"
	GO3 MacroRegion = "GO3"
)

// Valid reports whether m is one of the known macro regions.
func (m MacroRegion) Valid() bool {
	return m == GO1 || m == GO2 || m == GO3
}

// MacroRegionOption is a filter entry offered to clients.
type MacroRegionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MacroRegionOptions lists the filter values in display order. The grouping
// is local to this service; replace it through CITIES_FILE if it drifts.
var MacroRegionOptions = []MacroRegionOption{
	{Value: "all", Label: "Todas as macro-regiões"},
	{Value: string(GO1), Label: "GO1 – Missões"},
	{Value: string(GO2), Label: "GO2 – Fronteira Noroeste e Celeiro"},
	{Value: string(GO3), Label: "GO3 – Fronteira Oeste e Vale do Jaguari"},
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Record describes one registered municipality.
type Record struct {
	Name        string       `json:"name" yaml:"name"`
	Key         Key          `json:"key" yaml:"-"`
	MacroRegion MacroRegion  `json:"macro_region,omitempty" yaml:"macroRegion"`
	IBGECode    string       `json:"ibge_code,omitempty" yaml:"ibge"`
	Aliases     []string     `json:"-" yaml:"aliases"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates"`
}

// Registry is an immutable, normalized view over the city table.
type Registry struct {
	records []Record
	index   map[Key]int
}

type registryFile struct {
	Cities []Record `yaml:"cities"`
}

// DefaultRegistry returns the registry built from the embedded table.
func DefaultRegistry() *Registry {
	r, err := LoadRegistry(bytes.NewReader(defaultCities))
	if err != nil {
		panic(fmt.Sprintf("embedded city table is invalid: %v", err))
	}
	return r
}

// LoadRegistry parses a YAML city table. Names and aliases are indexed by
// their normalized key; a key claimed twice is an error.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding city table: %w", err)
	}

	reg := &Registry{
		records: make([]Record, 0, len(file.Cities)),
		index:   make(map[Key]int, len(file.Cities)),
	}
	for _, rec := range file.Cities {
		rec.Key = Normalize(rec.Name)
		if rec.Key == "" {
			return nil, fmt.Errorf("city entry without a name")
		}
		if rec.MacroRegion != "" && !rec.MacroRegion.Valid() {
			return nil, fmt.Errorf("city %s: unknown macro region %q", rec.Name, rec.MacroRegion)
		}

		pos := len(reg.records)
		reg.records = append(reg.records, rec)

		keys := []Key{rec.Key}
		for _, alias := range rec.Aliases {
			keys = append(keys, Normalize(alias))
		}
		for _, k := range keys {
			if prev, dup := reg.index[k]; dup && prev != pos {
				return nil, fmt.Errorf("city key %s is claimed by %s and %s", k, reg.records[prev].Name, rec.Name)
			}
			reg.index[k] = pos
		}
	}

	return reg, nil
}

// Lookup finds a city by any spelling of its name or aliases.
func (r *Registry) Lookup(name string) (Record, bool) {
	i, ok := r.index[Normalize(name)]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// Allowed reports whether name is a registered municipality.
func (r *Registry) Allowed(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// CanonicalKey returns the registered key for name, following aliases.
// Unregistered names fall back to their plain normalized form.
func (r *Registry) CanonicalKey(name string) Key {
	if rec, ok := r.Lookup(name); ok {
		return rec.Key
	}
	return Normalize(name)
}

// ResolveCoordinates returns the coordinate override for name, if any.
// Absence means the caller must use name-based lookup.
func (r *Registry) ResolveCoordinates(name string) (Coordinates, bool) {
	rec, ok := r.Lookup(name)
	if !ok || rec.Coordinates == nil {
		return Coordinates{}, false
	}
	return *rec.Coordinates, true
}

// MacroRegionOf returns the macro region of name, if registered with one.
func (r *Registry) MacroRegionOf(name string) (MacroRegion, bool) {
	rec, ok := r.Lookup(name)
	if !ok || rec.MacroRegion == "" {
		return "", false
	}
	return rec.MacroRegion, true
}

// IBGECode returns the IBGE municipality code of name, if known.
func (r *Registry) IBGECode(name string) (string, bool) {
	rec, ok := r.Lookup(name)
	if !ok || rec.IBGECode == "" {
		return "", false
	}
	return rec.IBGECode, true
}

// Cities returns all records in table order.
func (r *Registry) Cities() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// InMacroRegion returns the records of one macro region in table order.
// An empty region or "all" returns every record.
func (r *Registry) InMacroRegion(region MacroRegion) []Record {
	if region == "" || region == "all" {
		return r.Cities()
	}
	var out []Record
	for _, rec := range r.records {
		if rec.MacroRegion == region {
			out = append(out, rec)
		}
	}
	return out
}
