package climate

import "time"

// GeoLocation is a geocoding match.
type GeoLocation struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

// DailySample is one archive day. Nil fields are gaps in the upstream data.
type DailySample struct {
	Date            time.Time
	TempMax         *float64
	TempMin         *float64
	PrecipitationMm *float64
}

// MonthlySummary aggregates the samples of one calendar month.
// Samples is zero for a placeholder month.
type MonthlySummary struct {
	MonthIndex           int     `json:"month_index"`
	Name                 string  `json:"name"`
	AvgTempMax           float64 `json:"avg_temp_max"`
	AvgTempMin           float64 `json:"avg_temp_min"`
	TotalPrecipitationMm float64 `json:"total_precipitation_mm"`
	AbsMaxTemp           float64 `json:"abs_max_temp"`
	AbsMinTemp           float64 `json:"abs_min_temp"`
	DaysWithRain         int     `json:"days_with_rain"`
	Samples              int     `json:"samples"`
}

// YearlySummary is the twelve monthly summaries of a year plus extremes.
type YearlySummary struct {
	Year                 int              `json:"year"`
	Months               []MonthlySummary `json:"months"`
	HottestMonth         MonthlySummary   `json:"hottest_month"`
	ColdestMonth         MonthlySummary   `json:"coldest_month"`
	RainiestMonth        MonthlySummary   `json:"rainiest_month"`
	TotalPrecipitationMm float64          `json:"total_precipitation_mm"`
}

// Report pairs a yearly summary with the location it was computed for.
type Report struct {
	Location GeoLocation   `json:"location"`
	Summary  YearlySummary `json:"summary"`
}
