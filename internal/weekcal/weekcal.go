// Package weekcal computes week numbers and month grids.
//
// Two numbering conventions are supported:
//
//   - ISO-8601: weeks start on Monday and week 1 is the week holding the
//     year's first Thursday. Dates near Jan 1 may belong to the previous or
//     next week-year.
//   - Legacy: weeks start on the configured first weekday (Monday or Sunday)
//     and are counted from January 1st of the same calendar year. When Jan 1
//     is not the first weekday, the days up to the first full week form a
//     short leading week which is numbered 1, and numbering continues from
//     there. January 1st is therefore always in week 1 and a year has 53 or
//     54 weeks.
package weekcal

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidWeek    = errors.New("invalid week number")
	ErrInvalidWeekday = errors.New("first weekday must be monday or sunday")
)

// Week is one row of a calendar: its number and 7 consecutive dates starting
// at the calendar's first weekday. Dates are civil dates at 00:00 UTC.
type Week struct {
	Number int
	Dates  [7]time.Time
}

// First returns the first date of the week.
func (w Week) First() time.Time { return w.Dates[0] }

// Last returns the last date of the week.
func (w Week) Last() time.Time { return w.Dates[6] }

// Calendar is safe for concurrent use; it holds no mutable state.
type Calendar struct {
	iso          bool
	firstWeekday time.Weekday
}

// New returns a Calendar. In ISO-8601 mode firstWeekday is ignored and Monday
// is used.
func New(iso8601 bool, firstWeekday time.Weekday) (*Calendar, error) {
	if iso8601 {
		return &Calendar{iso: true, firstWeekday: time.Monday}, nil
	}
	if firstWeekday != time.Monday && firstWeekday != time.Sunday {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWeekday, firstWeekday)
	}
	return &Calendar{firstWeekday: firstWeekday}, nil
}

func (c *Calendar) IsISO8601() bool { return c.iso }

func (c *Calendar) FirstWeekday() time.Weekday { return c.firstWeekday }

// civil strips the time and location from t, keeping its wall-clock date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the first date of the week containing d.
func (c *Calendar) weekStart(d time.Time) time.Time {
	back := (int(d.Weekday()) - int(c.firstWeekday) + 7) % 7
	return d.AddDate(0, 0, -back)
}

func (c *Calendar) week(number int, first time.Time) Week {
	w := Week{Number: number}
	for i := range w.Dates {
		w.Dates[i] = first.AddDate(0, 0, i)
	}
	return w
}

// leadDays is the number of days of the leading partial week that fall
// before January 1st in legacy mode.
func (c *Calendar) leadDays(year int) int {
	return (int(date(year, time.January, 1).Weekday()) - int(c.firstWeekday) + 7) % 7
}

// WeekNumber returns the week number of the date part of t.
func (c *Calendar) WeekNumber(t time.Time) int {
	_, w := c.WeekYear(t)
	return w
}

// WeekYear returns the year owning the week of t together with the week
// number. In ISO-8601 mode the year may differ from t's calendar year; in
// legacy mode it never does.
func (c *Calendar) WeekYear(t time.Time) (year, week int) {
	d := civil(t)
	if c.iso {
		return d.ISOWeek()
	}
	return d.Year(), (d.YearDay()-1+c.leadDays(d.Year()))/7 + 1
}

// WeeksInYear returns the highest week number of year.
func (c *Calendar) WeeksInYear(year int) int {
	if c.iso {
		// Dec 28 is always in the last ISO week.
		_, w := date(year, time.December, 28).ISOWeek()
		return w
	}
	return c.WeekNumber(date(year, time.December, 31))
}

// WeekDates returns the 7 dates of the given week of year. In ISO-8601 mode
// year is the ISO week-year.
func (c *Calendar) WeekDates(year, week int) (Week, error) {
	if week < 1 || week > c.WeeksInYear(year) {
		return Week{}, fmt.Errorf("%w: %d-W%02d", ErrInvalidWeek, year, week)
	}
	var first time.Time
	if c.iso {
		// Week 1 is the week containing Jan 4.
		first = c.weekStart(date(year, time.January, 4))
	} else {
		first = date(year, time.January, 1).AddDate(0, 0, -c.leadDays(year))
	}
	return c.week(week, first.AddDate(0, 0, 7*(week-1))), nil
}

// WeekDatesByDate returns the week containing t and the year owning it.
func (c *Calendar) WeekDatesByDate(t time.Time) (int, Week) {
	year, number := c.WeekYear(t)
	return year, c.week(number, c.weekStart(civil(t)))
}

// MonthDates returns the weeks covering the month, including days borrowed
// from adjacent months in the first and last row. Each row is labelled with
// the week number of its last date.
func (c *Calendar) MonthDates(year int, month time.Month) []Week {
	first := date(year, month, 1)
	last := first.AddDate(0, 1, -1)

	weeks := make([]Week, 0, 6)
	for start := c.weekStart(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		w := c.week(0, start)
		w.Number = c.WeekNumber(w.Last())
		weeks = append(weeks, w)
	}
	return weeks
}
