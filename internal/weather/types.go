package weather

import (
	"time"

	"github.com/neexbeast/clima-rs/internal/city"
)

const kelvinOffset = 273.15

// kelvin is a temperature as delivered by OpenWeather without a units parameter.
// Every temperature field is decoded as kelvin and converted exactly once.
type kelvin float64

// Celsius converts k to degrees Celsius.
func (k kelvin) Celsius() float64 {
	return float64(k) - kelvinOffset
}

// Condition is the weather condition reported by OpenWeather.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Temperature holds current-weather temperatures in °C.
type Temperature struct {
	Current   float64 `json:"current"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	FeelsLike float64 `json:"feels_like"`
}

// Snapshot is the current weather of one city.
type Snapshot struct {
	CityName        string           `json:"city_name"`
	Country         string           `json:"country"`
	Coordinates     city.Coordinates `json:"coordinates"`
	Condition       Condition        `json:"condition"`
	Temperature     Temperature      `json:"temperature"`
	HumidityPct     int              `json:"humidity_pct"`
	PressureHpa     float64          `json:"pressure_hpa"`
	WindSpeedMs     float64          `json:"wind_speed_ms"`
	WindDeg         int              `json:"wind_deg"`
	CloudsPct       int              `json:"clouds_pct"`
	VisibilityM     int              `json:"visibility_m"`
	PrecipitationMm *float64         `json:"precipitation_mm,omitempty"`
	ObservedAt      time.Time        `json:"observed_at"`
	Sunrise         time.Time        `json:"sunrise"`
	Sunset          time.Time        `json:"sunset"`
}

// DayTemperature holds the daily temperature curve in °C.
type DayTemperature struct {
	Day     float64 `json:"day"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Night   float64 `json:"night"`
	Evening float64 `json:"evening"`
	Morning float64 `json:"morning"`
}

// DayFeelsLike holds the daily apparent temperatures in °C.
type DayFeelsLike struct {
	Day     float64 `json:"day"`
	Night   float64 `json:"night"`
	Evening float64 `json:"evening"`
	Morning float64 `json:"morning"`
}

// ForecastDay is one entry of a daily forecast.
type ForecastDay struct {
	Date                     time.Time      `json:"date"`
	Sunrise                  time.Time      `json:"sunrise"`
	Sunset                   time.Time      `json:"sunset"`
	Temp                     DayTemperature `json:"temp"`
	FeelsLike                DayFeelsLike   `json:"feels_like"`
	PressureHpa              float64        `json:"pressure_hpa"`
	HumidityPct              int            `json:"humidity_pct"`
	Condition                Condition      `json:"condition"`
	WindSpeedMs              float64        `json:"wind_speed_ms"`
	WindDeg                  int            `json:"wind_deg"`
	CloudsPct                int            `json:"clouds_pct"`
	PrecipitationProbability float64        `json:"precipitation_probability"`
	RainMm                   *float64       `json:"rain_mm,omitempty"`
}

// ForecastCity identifies the location a forecast was computed for.
type ForecastCity struct {
	Name              string           `json:"name"`
	Country           string           `json:"country"`
	Coordinates       city.Coordinates `json:"coordinates"`
	TimezoneOffsetSec int              `json:"timezone_offset_sec"`
}

// Forecast is a multi-day daily forecast.
type Forecast struct {
	City ForecastCity  `json:"city"`
	Days []ForecastDay `json:"days"`
}
