package climate

import (
	"math"
	"slices"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

type monthAccumulator struct {
	sumMax, sumMin, sumPrecip float64
	absMax, absMin            float64
	rainy, n                  int
}

// Summarize reduces daily samples into a YearlySummary with exactly twelve
// months in calendar order.
//
// Missing values are counted as zero, both in the sums and in the sample
// count, so monthly means understate temperatures when the archive has gaps.
func Summarize(year int, samples []DailySample) YearlySummary {
	var acc [12]monthAccumulator

	for _, s := range samples {
		m := int(s.Date.Month()) - 1
		if m < 0 || m > 11 {
			continue
		}
		a := &acc[m]
		tmax, tmin, precip := valueOrZero(s.TempMax), valueOrZero(s.TempMin), valueOrZero(s.PrecipitationMm)

		if a.n == 0 {
			a.absMax, a.absMin = tmax, tmin
		} else {
			a.absMax = math.Max(a.absMax, tmax)
			a.absMin = math.Min(a.absMin, tmin)
		}
		a.sumMax += tmax
		a.sumMin += tmin
		a.sumPrecip += precip
		if precip > 0 {
			a.rainy++
		}
		a.n++
	}

	summary := YearlySummary{Year: year, Months: make([]MonthlySummary, 12)}
	var total float64
	for m := range acc {
		a := acc[m]
		ms := MonthlySummary{MonthIndex: m, Name: monthNames[m]}
		if a.n > 0 {
			ms.AvgTempMax = round1(a.sumMax / float64(a.n))
			ms.AvgTempMin = round1(a.sumMin / float64(a.n))
			ms.TotalPrecipitationMm = round1(a.sumPrecip)
			ms.AbsMaxTemp = a.absMax
			ms.AbsMinTemp = a.absMin
			ms.DaysWithRain = a.rainy
			ms.Samples = a.n
		}
		summary.Months[m] = ms
		total += ms.TotalPrecipitationMm
	}
	summary.TotalPrecipitationMm = round1(total)

	var eligible []MonthlySummary
	for _, ms := range summary.Months {
		if ms.Samples > 0 {
			eligible = append(eligible, ms)
		}
	}
	if len(eligible) == 0 {
		summary.HottestMonth = summary.Months[0]
		summary.ColdestMonth = summary.Months[0]
		summary.RainiestMonth = summary.Months[0]
		return summary
	}

	summary.HottestMonth = pick(eligible, func(a, b MonthlySummary) bool { return a.AvgTempMax > b.AvgTempMax })
	summary.ColdestMonth = pick(eligible, func(a, b MonthlySummary) bool { return a.AvgTempMin < b.AvgTempMin })
	summary.RainiestMonth = pick(eligible, func(a, b MonthlySummary) bool { return a.TotalPrecipitationMm > b.TotalPrecipitationMm })
	return summary
}

// pick returns the first month after a stable sort by better.
func pick(months []MonthlySummary, better func(a, b MonthlySummary) bool) MonthlySummary {
	sorted := slices.Clone(months)
	slices.SortStableFunc(sorted, func(a, b MonthlySummary) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		default:
			return 0
		}
	})
	return sorted[0]
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
