package weekcal

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// span returns the civil dates from y-m-d over n days.
func span(y int, m time.Month, d, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = date(y, m, d).AddDate(0, 0, i)
	}
	return out
}

type row struct {
	number int
	first  time.Time
}

func rowsOf(weeks []Week) []row {
	out := make([]row, len(weeks))
	for i, w := range weeks {
		out[i] = row{w.Number, w.First()}
	}
	return out
}

func mustCalendar(t *testing.T, iso bool, wd time.Weekday) *Calendar {
	t.Helper()
	c, err := New(iso, wd)
	require.NoError(t, err)
	return c
}

func TestNewValidatesFirstWeekday(t *testing.T) {
	_, err := New(false, time.Wednesday)
	require.ErrorIs(t, err, ErrInvalidWeekday)

	c, err := New(true, time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, c.FirstWeekday())
	assert.True(t, c.IsISO8601())
}

func TestMonthDatesISOJanuary2023(t *testing.T) {
	weeks := mustCalendar(t, true, time.Monday).MonthDates(2023, time.January)

	require.Len(t, weeks, 6)
	assert.Equal(t, 52, weeks[0].Number)
	assert.Equal(t, span(2022, time.December, 26, 7), weeks[0].Dates[:])
	assert.Equal(t, 5, weeks[5].Number)
	assert.Equal(t, date(2023, time.February, 5), weeks[5].Last())
}

func TestMonthDatesFixtures(t *testing.T) {
	tests := []struct {
		name  string
		iso   bool
		wd    time.Weekday
		year  int
		month time.Month
		want  []row
	}{
		{
			name: "iso dec 2023", iso: true, wd: time.Monday, year: 2023, month: time.December,
			want: []row{
				{48, date(2023, 11, 27)}, {49, date(2023, 12, 4)}, {50, date(2023, 12, 11)},
				{51, date(2023, 12, 18)}, {52, date(2023, 12, 25)},
			},
		},
		{
			// ISO ignores the configured weekday.
			name: "iso sunday jan 2024", iso: true, wd: time.Sunday, year: 2024, month: time.January,
			want: []row{
				{1, date(2024, 1, 1)}, {2, date(2024, 1, 8)}, {3, date(2024, 1, 15)},
				{4, date(2024, 1, 22)}, {5, date(2024, 1, 29)},
			},
		},
		{
			name: "legacy monday jan 2023", wd: time.Monday, year: 2023, month: time.January,
			want: []row{
				{1, date(2022, 12, 26)}, {2, date(2023, 1, 2)}, {3, date(2023, 1, 9)},
				{4, date(2023, 1, 16)}, {5, date(2023, 1, 23)}, {6, date(2023, 1, 30)},
			},
		},
		{
			name: "legacy monday dec 2023", wd: time.Monday, year: 2023, month: time.December,
			want: []row{
				{49, date(2023, 11, 27)}, {50, date(2023, 12, 4)}, {51, date(2023, 12, 11)},
				{52, date(2023, 12, 18)}, {53, date(2023, 12, 25)},
			},
		},
		{
			name: "legacy sunday jan 2022", wd: time.Sunday, year: 2022, month: time.January,
			want: []row{
				{1, date(2021, 12, 26)}, {2, date(2022, 1, 2)}, {3, date(2022, 1, 9)},
				{4, date(2022, 1, 16)}, {5, date(2022, 1, 23)}, {6, date(2022, 1, 30)},
			},
		},
		{
			name: "legacy sunday dec 2022", wd: time.Sunday, year: 2022, month: time.December,
			want: []row{
				{49, date(2022, 11, 27)}, {50, date(2022, 12, 4)}, {51, date(2022, 12, 11)},
				{52, date(2022, 12, 18)}, {53, date(2022, 12, 25)},
			},
		},
		{
			name: "legacy sunday jan 2024", wd: time.Sunday, year: 2024, month: time.January,
			want: []row{
				{1, date(2023, 12, 31)}, {2, date(2024, 1, 7)}, {3, date(2024, 1, 14)},
				{4, date(2024, 1, 21)}, {5, date(2024, 1, 28)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCalendar(t, tt.iso, tt.wd)
			assert.Equal(t, tt.want, rowsOf(c.MonthDates(tt.year, tt.month)))
		})
	}
}

func TestWeekNumberFixtures(t *testing.T) {
	tests := []struct {
		name string
		iso  bool
		wd   time.Weekday
		date time.Time
		want int
	}{
		{"iso", true, time.Monday, date(2022, 1, 2), 52},
		{"iso", true, time.Monday, date(2022, 12, 26), 52},
		{"iso", true, time.Monday, date(2023, 1, 1), 52},
		{"iso", true, time.Monday, date(2023, 1, 2), 1},
		{"iso", true, time.Sunday, date(2023, 12, 31), 52},
		{"iso", true, time.Sunday, date(2024, 1, 1), 1},
		{"iso", true, time.Monday, date(2024, 1, 8), 2},
		{"legacy monday", false, time.Monday, date(2022, 1, 2), 1},
		{"legacy monday", false, time.Monday, date(2022, 12, 25), 52},
		{"legacy monday", false, time.Monday, date(2022, 12, 26), 53},
		{"legacy monday", false, time.Monday, date(2023, 1, 1), 1},
		{"legacy monday", false, time.Monday, date(2023, 1, 2), 2},
		{"legacy monday", false, time.Monday, date(2023, 12, 25), 53},
		{"legacy monday", false, time.Monday, date(2023, 12, 31), 53},
		{"legacy monday", false, time.Monday, date(2024, 1, 1), 1},
		{"legacy monday", false, time.Monday, date(2024, 1, 8), 2},
		{"legacy sunday", false, time.Sunday, date(2022, 1, 2), 2},
		{"legacy sunday", false, time.Sunday, date(2022, 12, 26), 53},
		{"legacy sunday", false, time.Sunday, date(2023, 1, 1), 1},
		{"legacy sunday", false, time.Sunday, date(2023, 1, 2), 1},
		{"legacy sunday", false, time.Sunday, date(2023, 12, 25), 52},
		{"legacy sunday", false, time.Sunday, date(2023, 12, 31), 53},
		{"legacy sunday", false, time.Sunday, date(2024, 1, 1), 1},
		{"legacy sunday", false, time.Sunday, date(2024, 1, 8), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+tt.date.Format(time.DateOnly), func(t *testing.T) {
			c := mustCalendar(t, tt.iso, tt.wd)
			assert.Equal(t, tt.want, c.WeekNumber(tt.date))
		})
	}
}

func TestWeekNumberIgnoresClockAndZone(t *testing.T) {
	c := mustCalendar(t, true, time.Monday)
	loc := time.FixedZone("UTC-10", -10*3600)
	// Wall clock date is Sunday Jan 1 2023 even though the instant is Jan 2 in UTC.
	assert.Equal(t, 52, c.WeekNumber(time.Date(2023, 1, 1, 23, 0, 0, 0, loc)))
}

func TestWeekDates(t *testing.T) {
	iso := mustCalendar(t, true, time.Monday)
	w, err := iso.WeekDates(2020, 53)
	require.NoError(t, err)
	assert.Equal(t, span(2020, time.December, 28, 7), w.Dates[:])

	legacy := mustCalendar(t, false, time.Monday)
	w, err = legacy.WeekDates(2023, 1)
	require.NoError(t, err)
	assert.Equal(t, span(2022, time.December, 26, 7), w.Dates[:])

	// 2012 starts on a Sunday and is a leap year: Monday-start legacy weeks reach 54.
	assert.Equal(t, 54, legacy.WeeksInYear(2012))
	w, err = legacy.WeekDates(2012, 54)
	require.NoError(t, err)
	assert.Equal(t, date(2012, time.December, 31), w.First())
}

func TestWeekDatesRejectsOutOfRange(t *testing.T) {
	iso := mustCalendar(t, true, time.Monday)
	for _, week := range []int{0, -1, 53} {
		_, err := iso.WeekDates(2023, week)
		assert.ErrorIs(t, err, ErrInvalidWeek, "week %d", week)
	}
}

func TestWeekDatesByDateResolvesWeekYear(t *testing.T) {
	iso := mustCalendar(t, true, time.Monday)

	year, w := iso.WeekDatesByDate(date(2023, 1, 1))
	assert.Equal(t, 2022, year)
	assert.Equal(t, 52, w.Number)
	assert.Equal(t, date(2022, 12, 26), w.First())

	year, w = iso.WeekDatesByDate(date(2024, 12, 30))
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, w.Number)

	legacy := mustCalendar(t, false, time.Sunday)
	year, w = legacy.WeekDatesByDate(date(2022, 12, 26))
	assert.Equal(t, 2022, year)
	assert.Equal(t, 53, w.Number)
	assert.Equal(t, date(2022, 12, 25), w.First())
}

func TestISOWeekRoundTripProperty(t *testing.T) {
	c, _ := New(true, time.Monday)
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("WeekNumber(last date of WeekDates(y, w)) == w", prop.ForAll(
		func(year, week int) bool {
			w, err := c.WeekDates(year, week)
			if err != nil {
				return false
			}
			y, n := c.WeekYear(w.Last())
			return y == year && n == week && c.WeekNumber(w.Last()) == week
		},
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 52),
	))

	properties.TestingRun(t)
}

func TestLegacyWeekRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("every date of a legacy week maps back to it within its year", prop.ForAll(
		func(sunday bool, year, week int) bool {
			wd := time.Monday
			if sunday {
				wd = time.Sunday
			}
			c, _ := New(false, wd)
			if week > c.WeeksInYear(year) {
				week = c.WeeksInYear(year)
			}
			w, err := c.WeekDates(year, week)
			if err != nil {
				return false
			}
			for _, d := range w.Dates {
				got := c.WeekNumber(d)
				switch {
				case d.Year() == year && got != week:
					return false
				case d.Year() > year && got != 1:
					return false
				}
			}
			return true
		},
		gen.Bool(),
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 54),
	))

	properties.TestingRun(t)
}

func TestMonthDatesCoverageProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("month grid is gap free and covers the month", prop.ForAll(
		func(mode, year, month int) bool {
			var c *Calendar
			switch mode {
			case 0:
				c, _ = New(true, time.Monday)
			case 1:
				c, _ = New(false, time.Monday)
			default:
				c, _ = New(false, time.Sunday)
			}
			weeks := c.MonthDates(year, time.Month(month))
			if len(weeks) < 4 || len(weeks) > 6 {
				return false
			}
			prev := weeks[0].First().AddDate(0, 0, -1)
			seen := map[int]bool{}
			for _, w := range weeks {
				if w.First().Weekday() != c.FirstWeekday() {
					return false
				}
				for _, d := range w.Dates {
					if !d.Equal(prev.AddDate(0, 0, 1)) {
						return false
					}
					prev = d
					if d.Month() == time.Month(month) {
						seen[d.Day()] = true
					}
				}
			}
			days := date(year, time.Month(month), 1).AddDate(0, 1, -1).Day()
			return len(seen) == days
		},
		gen.IntRange(0, 2),
		gen.IntRange(1900, 2200),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
