package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/climate"
	"github.com/neexbeast/clima-rs/internal/holiday"
	"github.com/neexbeast/clima-rs/internal/session"
	"github.com/neexbeast/clima-rs/internal/weather"
)

// SessionHeader carries the client's session ID for last-write-wins tracking.
const SessionHeader = "X-Session-ID"

const (
	topicWeather  = "weather"
	topicForecast = "forecast"
	topicClimate  = "climate"
)

// Deps are the collaborators served by Handlers. Sessions may be nil to
// disable superseded-request detection; Now defaults to time.Now.
type Deps struct {
	Cities    CityDirectory
	Weather   WeatherSource
	Dashboard DashboardCollector
	Tiles     TileSource
	Holidays  HolidaySource
	Climate   ClimateSource
	Locations LocationSearcher
	Bulletins BulletinRepo
	Sessions  session.Tracker
	Now       func() time.Time
}

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	cities    CityDirectory
	weather   WeatherSource
	dashboard DashboardCollector
	tiles     TileSource
	holidays  HolidaySource
	climate   ClimateSource
	locations LocationSearcher
	bulletins BulletinRepo
	sessions  session.Tracker
	now       func() time.Time
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(d Deps, log *slog.Logger) *Handlers {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		cities:    d.Cities,
		weather:   d.Weather,
		dashboard: d.Dashboard,
		tiles:     d.Tiles,
		holidays:  d.Holidays,
		climate:   d.Climate,
		locations: d.Locations,
		bulletins: d.Bulletins,
		sessions:  d.Sessions,
		now:       now,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cityParam returns the decoded {city} path segment.
func cityParam(r *http.Request) string {
	raw := chi.URLParam(r, "city")
	if name, err := url.PathUnescape(raw); err == nil {
		raw = name
	}
	return strings.TrimSpace(raw)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("query "+name, fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return n, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apperr.Validation("query "+name, name+" is required")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Validation("query "+name, fmt.Sprintf("%s must be a number, got %q", name, raw))
	}
	return f, nil
}

func macroParam(r *http.Request) (city.MacroRegion, error) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("macro")))
	if raw == "" || raw == "ALL" {
		return "", nil
	}
	region := city.MacroRegion(raw)
	if !region.Valid() {
		return "", apperr.Validation("query macro", fmt.Sprintf("unknown macro region %q", raw))
	}
	return region, nil
}

// latest runs fetch as the newest request of the caller's session for topic.
// If another request for the same topic began while fetch was running, the
// result is discarded and the client gets 409.
func (h *Handlers) latest(w http.ResponseWriter, r *http.Request, topic string, fetch func(ctx context.Context) (any, error)) {
	ctx := r.Context()
	sid := strings.TrimSpace(r.Header.Get(SessionHeader))

	var gen int64
	tracked := false
	if sid != "" && h.sessions != nil {
		if !session.ValidID(sid) {
			h.writeError(w, r, apperr.Validation("session", "invalid "+SessionHeader))
			return
		}
		g, err := h.sessions.Begin(ctx, sid, topic)
		if err != nil {
			h.log.Warn("session begin failed, serving untracked", "topic", topic, "err", err)
		} else {
			gen, tracked = g, true
		}
	}

	v, err := fetch(ctx)

	if tracked {
		current, cerr := h.sessions.IsCurrent(ctx, sid, topic, gen)
		switch {
		case cerr != nil:
			h.log.Warn("session check failed, serving result", "topic", topic, "err", cerr)
		case !current:
			h.log.Info("discarding superseded result", "topic", topic, "generation", gen)
			writeSuperseded(w)
			return
		}
	}

	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ---- cities & weather ----

type citiesResponse struct {
	Cities       []city.Record            `json:"cities"`
	MacroRegions []city.MacroRegionOption `json:"macro_regions"`
}

// ListCities handles GET /api/v1/cities.
func (h *Handlers) ListCities(w http.ResponseWriter, r *http.Request) {
	region, err := macroParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records := h.cities.InMacroRegion(region)
	if records == nil {
		records = []city.Record{}
	}
	writeJSON(w, http.StatusOK, citiesResponse{Cities: records, MacroRegions: city.MacroRegionOptions})
}

// GetWeather handles GET /api/v1/cities/{city}/weather.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	name := cityParam(r)
	h.latest(w, r, topicWeather, func(ctx context.Context) (any, error) {
		return h.weather.Current(ctx, name)
	})
}

// GetForecast handles GET /api/v1/cities/{city}/forecast.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	name := cityParam(r)
	days, err := intParam(r, "days", weather.DefaultForecastDays)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.latest(w, r, topicForecast, func(ctx context.Context) (any, error) {
		return h.weather.Forecast(ctx, name, days)
	})
}

type dashboardResponse struct {
	MacroRegion string             `json:"macro_region"`
	Snapshots   []weather.Snapshot `json:"snapshots"`
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	region, err := macroParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snaps, err := h.dashboard.Collect(r.Context(), region)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	label := string(region)
	if label == "" {
		label = "all"
	}
	writeJSON(w, http.StatusOK, dashboardResponse{MacroRegion: label, Snapshots: snaps})
}

// ---- map ----

// GetMapLayers handles GET /api/v1/map/layers.
func (h *Handlers) GetMapLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, weather.Layers(h.tiles != nil && h.tiles.Enabled()))
}

// GetPrecipitationTile handles GET /api/v1/map/precipitation/{z}/{x}/{y}.png.
func (h *Handlers) GetPrecipitationTile(w http.ResponseWriter, r *http.Request) {
	var coords [3]int
	for i, name := range []string{"z", "x", "y"} {
		n, err := strconv.Atoi(chi.URLParam(r, name))
		if err != nil {
			h.writeError(w, r, apperr.Validation("map tile", fmt.Sprintf("tile %s must be an integer", name)))
			return
		}
		coords[i] = n
	}

	tile, err := h.tiles.Precipitation(r.Context(), coords[0], coords[1], coords[2])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", tile.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tile.Data)
}

// ---- holidays ----

type holidayView struct {
	holiday.Holiday
	Description string `json:"description"`
}

type holidaysResponse struct {
	City     string         `json:"city"`
	Year     int            `json:"year"`
	Month    int            `json:"month,omitempty"`
	Source   holiday.Source `json:"source"`
	Holidays []holidayView  `json:"holidays"`
}

const (
	minHolidayYear = 1583
	maxHolidayYear = 9999
)

// ListHolidays handles GET /api/v1/cities/{city}/holidays.
func (h *Handlers) ListHolidays(w http.ResponseWriter, r *http.Request) {
	name := cityParam(r)
	year, err := intParam(r, "year", h.now().Year())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if year < minHolidayYear || year > maxHolidayYear {
		h.writeError(w, r, apperr.Validation("holidays", fmt.Sprintf("year must be between %d and %d", minHolidayYear, maxHolidayYear)))
		return
	}
	month, err := intParam(r, "month", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if month < 0 || month > 12 {
		h.writeError(w, r, apperr.Validation("holidays", "month must be between 1 and 12"))
		return
	}

	var (
		list []holiday.Holiday
		src  holiday.Source
	)
	if month == 0 {
		list, src = h.holidays.HolidaysFor(r.Context(), name, year)
	} else {
		list, src = h.holidays.HolidaysInMonth(r.Context(), name, year, time.Month(month))
	}

	views := make([]holidayView, 0, len(list))
	for _, hd := range list {
		views = append(views, holidayView{Holiday: hd, Description: hd.Description()})
	}
	writeJSON(w, http.StatusOK, holidaysResponse{City: name, Year: year, Month: month, Source: src, Holidays: views})
}

type holidayCheckResponse struct {
	Date        string `json:"date"`
	Holiday     bool   `json:"holiday"`
	Description string `json:"description,omitempty"`
}

// CheckHoliday handles GET /api/v1/cities/{city}/holidays/check.
func (h *Handlers) CheckHoliday(w http.ResponseWriter, r *http.Request) {
	name := cityParam(r)
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		h.writeError(w, r, apperr.Validation("holiday check", "date must be YYYY-MM-DD"))
		return
	}

	resp := holidayCheckResponse{Date: date.Format(time.DateOnly)}
	if hd, ok := h.holidays.Lookup(r.Context(), name, date); ok {
		resp.Holiday = true
		resp.Description = hd.Description()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- climate ----

// defaultClimateYear is the last complete calendar year.
func (h *Handlers) defaultClimateYear() int {
	return h.now().Year() - 1
}

// GetCityClimate handles GET /api/v1/cities/{city}/climate.
func (h *Handlers) GetCityClimate(w http.ResponseWriter, r *http.Request) {
	name := cityParam(r)
	year, err := intParam(r, "year", h.defaultClimateYear())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.latest(w, r, topicClimate, func(ctx context.Context) (any, error) {
		return h.climate.YearForCity(ctx, name, year)
	})
}

// SearchLocations handles GET /api/v1/climate/search.
func (h *Handlers) SearchLocations(w http.ResponseWriter, r *http.Request) {
	matches, err := h.locations.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetArchiveClimate handles GET /api/v1/climate/archive.
func (h *Handlers) GetArchiveClimate(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	year, err := intParam(r, "year", h.defaultClimateYear())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	loc := climate.GeoLocation{
		Name:      strings.TrimSpace(q.Get("name")),
		Timezone:  strings.TrimSpace(q.Get("timezone")),
		Latitude:  lat,
		Longitude: lon,
	}
	h.latest(w, r, topicClimate, func(ctx context.Context) (any, error) {
		return h.climate.YearAt(ctx, loc, year)
	})
}

// ---- health ----

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. A nil pinger is reported as "disabled" and does not degrade
// the service.
func HealthHandlerFunc(db, redis pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		check := func(name string, p pinger) string {
			if p == nil {
				return "disabled"
			}
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: ping failed", "component", name, "err", err)
				status = http.StatusServiceUnavailable
				return "error"
			}
			return "ok"
		}

		dbStatus := check("db", db)
		redisStatus := check("redis", redis)

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
