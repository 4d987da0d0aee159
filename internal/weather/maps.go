package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/upstream"
)

const (
	owmTileDefaultURL = "https://tile.openweathermap.org/map/precipitation_new"

	// PrecipitationTilePath is the route template of the tile proxy.
	PrecipitationTilePath = "/api/v1/map/precipitation/{z}/{x}/{y}.png"

	maxTileZoom = 18
)

// LegendItem is one intensity band of an overlay.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Layer describes a tile layer for a Leaflet-style client.
type Layer struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	URLTemplate string       `json:"url_template"`
	Attribution string       `json:"attribution,omitempty"`
	Opacity     float64      `json:"opacity"`
	Overlay     bool         `json:"overlay"`
	Legend      []LegendItem `json:"legend,omitempty"`
}

// MapView is the initial map state plus the available layers.
type MapView struct {
	Center city.Coordinates `json:"center"`
	Zoom   int              `json:"zoom"`
	Layers []Layer          `json:"layers"`
}

// Layers returns the map view centred on RS. The precipitation overlay is
// listed only when the tile proxy can serve it.
func Layers(precipitationEnabled bool) MapView {
	view := MapView{
		Center: city.Coordinates{Lat: -30.0, Lon: -53.0},
		Zoom:   6,
		Layers: []Layer{{
			ID:          "osm",
			Name:        "OpenStreetMap",
			URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`,
			Opacity:     1,
		}},
	}
	if precipitationEnabled {
		view.Layers = append(view.Layers, Layer{
			ID:          "precipitation",
			Name:        "Camada de chuva (precipitação)",
			URLTemplate: PrecipitationTilePath,
			Opacity:     0.7,
			Overlay:     true,
			Legend: []LegendItem{
				{Label: "Leve", Color: "#bfdbfe"},
				{Label: "Moderada", Color: "#3b82f6"},
				{Label: "Forte", Color: "#1e40af"},
			},
		})
	}
	return view
}

// Tile is a proxied map tile.
type Tile struct {
	ContentType string
	Data        []byte
}

// TileProxy fetches precipitation tiles so the API key never reaches clients.
type TileProxy struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
}

// NewTileProxy constructs a TileProxy against the production tile server.
func NewTileProxy(apiKey string, timeout time.Duration) *TileProxy {
	return NewTileProxyWithURL(owmTileDefaultURL, apiKey, timeout)
}

// NewTileProxyWithURL constructs a TileProxy pointing at a custom base URL (for tests).
func NewTileProxyWithURL(baseURL, apiKey string, timeout time.Duration) *TileProxy {
	return &TileProxy{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  upstream.New("openweather-tiles", timeout),
	}
}

// Enabled reports whether an API key is configured.
func (p *TileProxy) Enabled() bool {
	return p.apiKey != ""
}

// Precipitation returns the tile at z/x/y.
func (p *TileProxy) Precipitation(ctx context.Context, z, x, y int) (*Tile, error) {
	if !p.Enabled() {
		return nil, apperr.ConfigurationMissing("precipitation tile", "OPENWEATHER_API_KEY")
	}
	if z < 0 || z > maxTileZoom {
		return nil, apperr.Validation("precipitation tile", fmt.Sprintf("zoom %d out of range", z))
	}
	span := 1 << z
	if x < 0 || x >= span || y < 0 || y >= span {
		return nil, apperr.Validation("precipitation tile", fmt.Sprintf("tile %d/%d/%d out of range", z, x, y))
	}

	endpoint := fmt.Sprintf("%s/%d/%d/%d.png?appid=%s", p.baseURL, z, x, y, p.apiKey)
	resp, err := p.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("precipitation tile %d/%d/%d: %w", z, x, y, err)
	}

	ct := resp.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return &Tile{ContentType: ct, Data: resp.Body}, nil
}
