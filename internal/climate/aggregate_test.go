package climate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/clima-rs/internal/climate"
)

func f(v float64) *float64 { return &v }

func day(year int, m time.Month, d int) time.Time {
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

// fullYear returns one sample per day of year with fixed temperatures and no rain.
func fullYear(year int) []climate.DailySample {
	var out []climate.DailySample
	for t := day(year, time.January, 1); t.Year() == year; t = t.AddDate(0, 0, 1) {
		out = append(out, climate.DailySample{Date: t, TempMax: f(25), TempMin: f(15), PrecipitationMm: f(0)})
	}
	return out
}

func TestSummarize_MarchRain(t *testing.T) {
	samples := fullYear(2025)
	rain := []float64{12.0, 8.4, 20.0, 5.5, 14.5, 9.0, 16.0, 11.0, 10.0, 14.0}
	for i, mm := range rain {
		for j := range samples {
			if samples[j].Date.Equal(day(2025, time.March, 3+2*i)) {
				samples[j].PrecipitationMm = f(mm)
			}
		}
	}

	s := climate.Summarize(2025, samples)

	require.Len(t, s.Months, 12)
	march := s.Months[2]
	assert.Equal(t, "Março", march.Name)
	assert.Equal(t, 10, march.DaysWithRain)
	assert.Equal(t, 120.4, march.TotalPrecipitationMm)
	assert.Equal(t, 31, march.Samples)
	assert.Equal(t, 2, s.RainiestMonth.MonthIndex)
	assert.Equal(t, 120.4, s.TotalPrecipitationMm)
}

func TestSummarize_AllMissing(t *testing.T) {
	var samples []climate.DailySample
	for t := day(2024, time.January, 1); t.Year() == 2024; t = t.AddDate(0, 0, 1) {
		samples = append(samples, climate.DailySample{Date: t})
	}

	s := climate.Summarize(2024, samples)

	require.Len(t, s.Months, 12)
	for i, m := range s.Months {
		assert.Equal(t, i, m.MonthIndex)
		assert.Zero(t, m.AvgTempMax)
		assert.Zero(t, m.AvgTempMin)
		assert.Zero(t, m.TotalPrecipitationMm)
		assert.Zero(t, m.AbsMaxTemp)
		assert.Zero(t, m.AbsMinTemp)
		assert.Zero(t, m.DaysWithRain)
	}
	assert.Zero(t, s.TotalPrecipitationMm)
}

func TestSummarize_NoSamplesFallsBackToJanuary(t *testing.T) {
	s := climate.Summarize(2020, nil)

	require.Len(t, s.Months, 12)
	assert.Equal(t, 0, s.HottestMonth.MonthIndex)
	assert.Equal(t, 0, s.ColdestMonth.MonthIndex)
	assert.Equal(t, 0, s.RainiestMonth.MonthIndex)
	assert.Equal(t, "Janeiro", s.HottestMonth.Name)
	assert.Zero(t, s.HottestMonth.Samples)
}

func TestSummarize_MeanOfPresentSamples(t *testing.T) {
	s := climate.Summarize(2025, []climate.DailySample{
		{Date: day(2025, time.June, 1), TempMax: f(10), TempMin: f(2)},
		{Date: day(2025, time.June, 2), TempMax: f(20), TempMin: f(4)},
	})

	june := s.Months[5]
	assert.Equal(t, 15.0, june.AvgTempMax)
	assert.Equal(t, 3.0, june.AvgTempMin)
	assert.Equal(t, 20.0, june.AbsMaxTemp)
	assert.Equal(t, 2.0, june.AbsMinTemp)
	assert.Equal(t, 2, june.Samples)
}

func TestSummarize_AbsentCountsAsZero(t *testing.T) {
	s := climate.Summarize(2025, []climate.DailySample{
		{Date: day(2025, time.July, 1), TempMax: f(10)},
		{Date: day(2025, time.July, 2)},
	})

	july := s.Months[6]
	assert.Equal(t, 5.0, july.AvgTempMax)
	assert.Equal(t, 0.0, july.AbsMinTemp)
	assert.Equal(t, 2, july.Samples)
}

func TestSummarize_RoundsHalfAwayFromZero(t *testing.T) {
	s := climate.Summarize(2025, []climate.DailySample{
		{Date: day(2025, time.August, 1), TempMax: f(10.25), TempMin: f(-3.25), PrecipitationMm: f(0.25)},
	})

	aug := s.Months[7]
	assert.Equal(t, 10.3, aug.AvgTempMax)
	assert.Equal(t, -3.3, aug.AvgTempMin)
	assert.Equal(t, 0.3, aug.TotalPrecipitationMm)
}

func TestSummarize_ExtremesAndTies(t *testing.T) {
	s := climate.Summarize(2025, []climate.DailySample{
		{Date: day(2025, time.February, 1), TempMax: f(30), TempMin: f(20), PrecipitationMm: f(50)},
		{Date: day(2025, time.May, 1), TempMax: f(30), TempMin: f(5), PrecipitationMm: f(50)},
		{Date: day(2025, time.October, 1), TempMax: f(22), TempMin: f(5), PrecipitationMm: f(10)},
	})

	assert.Equal(t, 1, s.HottestMonth.MonthIndex, "tie goes to the earlier month")
	assert.Equal(t, 4, s.ColdestMonth.MonthIndex, "tie goes to the earlier month")
	assert.Equal(t, 1, s.RainiestMonth.MonthIndex)
	assert.Equal(t, 110.0, s.TotalPrecipitationMm)
}

func TestSummarize_PlaceholdersAreNotEligible(t *testing.T) {
	s := climate.Summarize(2025, []climate.DailySample{
		{Date: day(2025, time.December, 1), TempMax: f(-2), TempMin: f(-8), PrecipitationMm: f(0)},
	})

	assert.Equal(t, 11, s.HottestMonth.MonthIndex, "empty months with a zero mean must not win")
	assert.Equal(t, 11, s.ColdestMonth.MonthIndex)
	assert.Equal(t, 11, s.RainiestMonth.MonthIndex)
}
