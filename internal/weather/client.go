// Package weather resolves municipality names against OpenWeather for
// current conditions and daily forecasts, and serves the precipitation map.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/upstream"
)

const (
	owmDefaultURL = "https://api.openweathermap.org/data/2.5"

	// DefaultForecastDays is used when the caller does not ask for a length.
	DefaultForecastDays = 16
	maxForecastDays     = 16
)

// cityLookup is satisfied by *city.Registry.
type cityLookup interface {
	Lookup(name string) (city.Record, bool)
}

// Client fetches current weather and daily forecasts from OpenWeather.
type Client struct {
	apiKey  string
	baseURL string
	cities  cityLookup
	client  *upstream.Client
}

// NewClient constructs a Client against the production API.
func NewClient(apiKey string, cities cityLookup, timeout time.Duration) *Client {
	return NewClientWithURL(owmDefaultURL, apiKey, cities, timeout)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey string, cities cityLookup, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = owmDefaultURL
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		cities:  cities,
		client:  upstream.New("openweather", timeout),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCoord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type owmCurrentResponse struct {
	Coord   owmCoord       `json:"coord"`
	Weather []owmCondition `json:"weather"`
	Main    struct {
		Temp      kelvin  `json:"temp"`
		FeelsLike kelvin  `json:"feels_like"`
		TempMin   kelvin  `json:"temp_min"`
		TempMax   kelvin  `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Rain *struct {
		OneHour   *float64 `json:"1h"`
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

type owmForecastResponse struct {
	City struct {
		Name     string   `json:"name"`
		Coord    owmCoord `json:"coord"`
		Country  string   `json:"country"`
		Timezone int      `json:"timezone"`
	} `json:"city"`
	List []struct {
		Dt      int64 `json:"dt"`
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
		Temp    struct {
			Day   kelvin `json:"day"`
			Min   kelvin `json:"min"`
			Max   kelvin `json:"max"`
			Night kelvin `json:"night"`
			Eve   kelvin `json:"eve"`
			Morn  kelvin `json:"morn"`
		} `json:"temp"`
		FeelsLike struct {
			Day   kelvin `json:"day"`
			Night kelvin `json:"night"`
			Eve   kelvin `json:"eve"`
			Morn  kelvin `json:"morn"`
		} `json:"feels_like"`
		Pressure float64        `json:"pressure"`
		Humidity int            `json:"humidity"`
		Weather  []owmCondition `json:"weather"`
		Speed    float64        `json:"speed"`
		Deg      int            `json:"deg"`
		Clouds   int            `json:"clouds"`
		Pop      float64        `json:"pop"`
		Rain     *float64       `json:"rain"`
	} `json:"list"`
}

// Current returns the current weather for cityName.
func (c *Client) Current(ctx context.Context, cityName string) (*Snapshot, error) {
	var raw owmCurrentResponse
	display, err := c.resolve(ctx, "/weather", cityName, nil, &raw)
	if err != nil {
		return nil, fmt.Errorf("current weather for %q: %w", strings.TrimSpace(cityName), err)
	}

	name := raw.Name
	if display != "" {
		name = display
	}

	snap := &Snapshot{
		CityName:    name,
		Country:     raw.Sys.Country,
		Coordinates: city.Coordinates{Lat: raw.Coord.Lat, Lon: raw.Coord.Lon},
		Condition:   firstCondition(raw.Weather),
		Temperature: Temperature{
			Current:   raw.Main.Temp.Celsius(),
			Min:       raw.Main.TempMin.Celsius(),
			Max:       raw.Main.TempMax.Celsius(),
			FeelsLike: raw.Main.FeelsLike.Celsius(),
		},
		HumidityPct: raw.Main.Humidity,
		PressureHpa: raw.Main.Pressure,
		WindSpeedMs: raw.Wind.Speed,
		WindDeg:     raw.Wind.Deg,
		CloudsPct:   raw.Clouds.All,
		VisibilityM: raw.Visibility,
		ObservedAt:  unixUTC(raw.Dt),
		Sunrise:     unixUTC(raw.Sys.Sunrise),
		Sunset:      unixUTC(raw.Sys.Sunset),
	}
	if raw.Rain != nil {
		switch {
		case raw.Rain.OneHour != nil:
			snap.PrecipitationMm = raw.Rain.OneHour
		case raw.Rain.ThreeHour != nil:
			snap.PrecipitationMm = raw.Rain.ThreeHour
		}
	}

	return snap, nil
}

// Forecast returns a daily forecast of days entries for cityName.
// days must be within 1..16; callers apply DefaultForecastDays themselves.
func (c *Client) Forecast(ctx context.Context, cityName string, days int) (*Forecast, error) {
	if days < 1 || days > maxForecastDays {
		return nil, apperr.Validation("forecast", fmt.Sprintf("days must be between 1 and %d, got %d", maxForecastDays, days))
	}

	var raw owmForecastResponse
	extra := url.Values{"cnt": []string{strconv.Itoa(days)}}
	display, err := c.resolve(ctx, "/forecast/daily", cityName, extra, &raw)
	if err != nil {
		return nil, fmt.Errorf("forecast for %q: %w", strings.TrimSpace(cityName), err)
	}

	fc := &Forecast{
		City: ForecastCity{
			Name:              raw.City.Name,
			Country:           raw.City.Country,
			Coordinates:       city.Coordinates{Lat: raw.City.Coord.Lat, Lon: raw.City.Coord.Lon},
			TimezoneOffsetSec: raw.City.Timezone,
		},
		Days: make([]ForecastDay, 0, len(raw.List)),
	}
	if display != "" {
		fc.City.Name = display
	}

	for _, d := range raw.List {
		fc.Days = append(fc.Days, ForecastDay{
			Date:    unixUTC(d.Dt),
			Sunrise: unixUTC(d.Sunrise),
			Sunset:  unixUTC(d.Sunset),
			Temp: DayTemperature{
				Day:     d.Temp.Day.Celsius(),
				Min:     d.Temp.Min.Celsius(),
				Max:     d.Temp.Max.Celsius(),
				Night:   d.Temp.Night.Celsius(),
				Evening: d.Temp.Eve.Celsius(),
				Morning: d.Temp.Morn.Celsius(),
			},
			FeelsLike: DayFeelsLike{
				Day:     d.FeelsLike.Day.Celsius(),
				Night:   d.FeelsLike.Night.Celsius(),
				Evening: d.FeelsLike.Eve.Celsius(),
				Morning: d.FeelsLike.Morn.Celsius(),
			},
			PressureHpa:              d.Pressure,
			HumidityPct:              d.Humidity,
			Condition:                firstCondition(d.Weather),
			WindSpeedMs:              d.Speed,
			WindDeg:                  d.Deg,
			CloudsPct:                d.Clouds,
			PrecipitationProbability: d.Pop,
			RainMm:                   d.Rain,
		})
	}

	return fc, nil
}

// resolve runs the query strategy for cityName against path and decodes into dst.
// Registered cities with a coordinate override are queried by lat/lon and the
// returned display name is the registry name. Everything else is queried as
// "name,RS,BR" and, on 404 only, retried once as "name,BR".
func (c *Client) resolve(ctx context.Context, path, cityName string, extra url.Values, dst any) (string, error) {
	name := strings.TrimSpace(cityName)
	if name == "" {
		return "", apperr.Validation("weather query", "city name is required")
	}
	if !c.Enabled() {
		return "", apperr.ConfigurationMissing("weather query", "OPENWEATHER_API_KEY")
	}

	if c.cities != nil {
		if rec, ok := c.cities.Lookup(name); ok && rec.Coordinates != nil {
			params := c.params(extra)
			params.Set("lat", strconv.FormatFloat(rec.Coordinates.Lat, 'f', -1, 64))
			params.Set("lon", strconv.FormatFloat(rec.Coordinates.Lon, 'f', -1, 64))
			if err := c.client.GetJSON(ctx, c.baseURL+path+"?"+params.Encode(), nil, dst); err != nil {
				return "", err
			}
			return rec.Name, nil
		}
	}

	params := c.params(extra)
	params.Set("q", name+",RS,BR")
	err := c.client.GetJSON(ctx, c.baseURL+path+"?"+params.Encode(), nil, dst)
	if errors.Is(err, apperr.ErrNotFound) {
		params.Set("q", name+",BR")
		err = c.client.GetJSON(ctx, c.baseURL+path+"?"+params.Encode(), nil, dst)
	}
	return "", err
}

func (c *Client) params(extra url.Values) url.Values {
	params := url.Values{}
	for k, vs := range extra {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("appid", c.apiKey)
	params.Set("lang", "pt_br")
	return params
}

func firstCondition(list []owmCondition) Condition {
	if len(list) == 0 {
		return Condition{}
	}
	w := list[0]
	return Condition{ID: w.ID, Main: w.Main, Description: w.Description, Icon: w.Icon}
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
