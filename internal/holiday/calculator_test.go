package holiday_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/holiday"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCalculator(includeCorpusChristi bool) *holiday.Calculator {
	return holiday.NewCalculator(holiday.DefaultTables(), holiday.Options{
		IncludeCorpusChristi: includeCorpusChristi,
		Canonical:            city.DefaultRegistry().CanonicalKey,
	})
}

func TestEasterSunday_KnownDates(t *testing.T) {
	cases := map[int]time.Time{
		1818: date(1818, time.March, 22),
		1943: date(1943, time.April, 25),
		2000: date(2000, time.April, 23),
		2019: date(2019, time.April, 21),
		2024: date(2024, time.March, 31),
		2025: date(2025, time.April, 20),
		2026: date(2026, time.April, 5),
		2038: date(2038, time.April, 25),
	}
	for year, want := range cases {
		assert.Equal(t, want, holiday.EasterSunday(year), "year %d", year)
	}
}

func TestEasterSunday_AlwaysSundayInWindow(t *testing.T) {
	for year := 1900; year <= 2400; year++ {
		e := holiday.EasterSunday(year)
		require.Equal(t, time.Sunday, e.Weekday(), "year %d", year)
		earliest := date(year, time.March, 22)
		latest := date(year, time.April, 25)
		require.False(t, e.Before(earliest), "year %d: %s", year, e)
		require.False(t, e.After(latest), "year %d: %s", year, e)
	}
}

func TestGoodFriday_TwoDaysBeforeEaster(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		diff := holiday.EasterSunday(year).Sub(holiday.GoodFriday(year))
		require.Equal(t, 48*time.Hour, diff, "year %d", year)
		require.Equal(t, time.Friday, holiday.GoodFriday(year).Weekday())
	}
	assert.Equal(t, date(2026, time.April, 3), holiday.GoodFriday(2026))
}

func TestCorpusChristi(t *testing.T) {
	assert.Equal(t, date(2026, time.June, 4), holiday.CorpusChristi(2026))
	assert.Equal(t, time.Thursday, holiday.CorpusChristi(2031).Weekday())
}

func TestHolidaysFor_SantoAngelo2026(t *testing.T) {
	list := newCalculator(true).HolidaysFor("SANTO ANGELO", 2026)

	require.NotEmpty(t, list)
	first := list[0]
	assert.Equal(t, holiday.Date{Day: 1, Month: time.January}, first.Date)
	assert.Equal(t, "Ano Novo", first.Title)
	assert.Equal(t, holiday.National, first.Kind)
	assert.Empty(t, first.City)

	var anniversary *holiday.Holiday
	for i := range list {
		if list[i].Kind == holiday.Municipal && list[i].Title == "Aniversário do Município" {
			anniversary = &list[i]
		}
	}
	require.NotNil(t, anniversary)
	assert.Equal(t, holiday.Date{Day: 22, Month: time.March}, anniversary.Date)
	assert.Equal(t, "SANTO ANGELO", anniversary.City)
}

func TestHolidaysFor_UnknownCityOnlyNationalAndState(t *testing.T) {
	list := newCalculator(true).HolidaysFor("Lisboa", 2026)

	for _, h := range list {
		assert.NotEqual(t, holiday.Municipal, h.Kind)
	}
	// 8 fixed national + Good Friday + Corpus Christi + 2 state.
	assert.Len(t, list, 12)

	withoutCC := newCalculator(false).HolidaysFor("Lisboa", 2026)
	assert.Len(t, withoutCC, 11)
	for _, h := range withoutCC {
		assert.NotEqual(t, "Corpus Christi", h.Title)
	}
}

func TestHolidaysFor_NoDuplicatesAndSorted(t *testing.T) {
	calc := newCalculator(true)
	names := append([]string{"", "Atlantis"}, cityNames()...)

	for _, name := range names {
		for _, year := range []int{1999, 2024, 2025, 2026, 2040} {
			list := calc.HolidaysFor(name, year)

			seen := map[string]bool{}
			for i, h := range list {
				key := h.Date.String() + "|" + h.Title + "|" + string(h.Kind) + "|" + h.City
				require.False(t, seen[key], "duplicate %s for %q/%d", key, name, year)
				seen[key] = true

				if i > 0 {
					prev := list[i-1].Date
					ordered := prev.Month < h.Date.Month || (prev.Month == h.Date.Month && prev.Day <= h.Date.Day)
					require.True(t, ordered, "%q/%d: %s before %s", name, year, prev, h.Date)
				}
			}
		}
	}
}

func TestHolidaysFor_StableTieOrder(t *testing.T) {
	list := newCalculator(false).HolidaysFor("Santo Ângelo", 2026)

	var onDay []string
	for _, h := range list {
		if h.Date == (holiday.Date{Day: 22, Month: time.March}) {
			onDay = append(onDay, h.Title)
		}
	}
	assert.Equal(t, []string{"Aniversário do Município", "Feriado Municipal"}, onDay)
}

func TestHolidaysFor_NormalizationVariants(t *testing.T) {
	calc := newCalculator(false)
	count := func(name string) int {
		n := 0
		for _, h := range calc.HolidaysFor(name, 2026) {
			if h.Kind == holiday.Municipal {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 2, count("Maçambará"))
	assert.Equal(t, 2, count("MAçAMBARá"))
	assert.Equal(t, 2, count("macambara"))
	assert.Equal(t, 2, count("Entre Ijuis"))
	assert.Equal(t, 4, count("Maurício Cardoso"), "alias resolves through the registry")
	assert.Equal(t, 3, count("ALECRIM"))
}

func TestHolidaysFor_NationalAndMunicipalSameTitleKept(t *testing.T) {
	list := newCalculator(false).HolidaysFor("São Borja", 2026)

	var finados []holiday.Kind
	for _, h := range list {
		if h.Title == "Finados" {
			finados = append(finados, h.Kind)
		}
	}
	assert.ElementsMatch(t, []holiday.Kind{holiday.National, holiday.Municipal}, finados)
}

func TestIsHolidayAndDescribe(t *testing.T) {
	calc := newCalculator(true)

	assert.True(t, calc.IsHoliday("Santa Rosa", date(2026, time.January, 1)))
	assert.True(t, calc.IsHoliday("Santa Rosa", date(2026, time.July, 10)))
	assert.False(t, calc.IsHoliday("Santa Rosa", date(2026, time.July, 11)))
	assert.True(t, calc.IsHoliday("Itaqui", date(2026, time.April, 3)), "Good Friday 2026")
	assert.False(t, calc.IsHoliday("Itaqui", date(2025, time.April, 3)))

	desc, ok := calc.Describe("Santa Rosa", date(2026, time.September, 20))
	require.True(t, ok)
	assert.Equal(t, "Revolução Farroupilha (estadual)", desc)

	desc, ok = calc.Describe("Santa Rosa", date(2026, time.July, 10))
	require.True(t, ok)
	assert.Equal(t, "Aniversário do Município (municipal - Santa Rosa)", desc)

	_, ok = calc.Describe("Santa Rosa", date(2026, time.July, 11))
	assert.False(t, ok)
}

func TestFinalize_DropsDuplicates(t *testing.T) {
	d := holiday.Date{Day: 2, Month: time.February}
	list := holiday.Finalize([]holiday.Holiday{
		{Date: holiday.Date{Day: 5, Month: time.March}, Title: "B", Kind: holiday.Municipal, City: "X"},
		{Date: d, Title: "A", Kind: holiday.Municipal, City: "X"},
		{Date: d, Title: "A", Kind: holiday.Municipal, City: "X"},
		{Date: d, Title: "A", Kind: holiday.Municipal, City: "Y"},
	})

	require.Len(t, list, 3)
	assert.Equal(t, "X", list[0].City)
	assert.Equal(t, "Y", list[1].City)
	assert.Equal(t, "B", list[2].Title)
}

func TestParseDate(t *testing.T) {
	d, err := holiday.ParseDate("07/09")
	require.NoError(t, err)
	assert.Equal(t, holiday.Date{Day: 7, Month: time.September}, d)
	assert.Equal(t, "07/09", d.String())

	for _, bad := range []string{"", "7-9", "32/01", "01/13", "aa/01"} {
		_, err := holiday.ParseDate(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLoadTables_Errors(t *testing.T) {
	_, err := holiday.LoadTables(strings.NewReader(`national: [{date: "99/99", title: "x"}]`))
	require.Error(t, err)

	_, err = holiday.LoadTables(strings.NewReader(`
municipal:
  São Borja: [{date: "10/10", title: "a"}]
  SAO BORJA: [{date: "10/10", title: "b"}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listed twice")

	_, err = holiday.LoadTables(strings.NewReader(`state: [{date: "20/09"}]`))
	require.Error(t, err)
}

func TestDefaultTables_KeysMatchRegistry(t *testing.T) {
	reg := city.DefaultRegistry()
	for key := range holiday.DefaultTables().Municipal {
		assert.True(t, reg.Allowed(string(key)), "municipal table key %s is not a registered city", key)
	}
}

func cityNames() []string {
	var names []string
	for _, rec := range city.DefaultRegistry().Cities() {
		names = append(names, rec.Name)
	}
	return names
}
