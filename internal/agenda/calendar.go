package agenda

import (
	"time"

	"weekcal/internal/config"
	"weekcal/internal/timerange"
	"weekcal/internal/weekcal"
)

// EventChecker reports whether any event starts inside a range.
type EventChecker interface {
	HasEventInRange(r timerange.Range) (bool, error)
}

// Day is a civil date of a calendar grid.
type Day struct {
	Year     int
	Month    time.Month
	Day      int
	HasEvent bool
}

// WeekView is one row of a calendar grid.
type WeekView struct {
	Number int
	Days   [7]Day
}

// DateInfo breaks an instant down in the configured zone.
type DateInfo struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Week       int
}

// CalendarService builds week and month grids annotated with event
// presence.
type CalendarService struct {
	settings config.Settings
	cal      *weekcal.Calendar
	events   EventChecker

	// Clock, if set, replaces time.Now.
	Clock func() time.Time
}

func NewCalendarService(settings config.Settings, cal *weekcal.Calendar, events EventChecker) *CalendarService {
	return &CalendarService{settings: settings, cal: cal, events: events}
}

// MonthDates returns the weeks covering month.
func (s *CalendarService) MonthDates(year int, month time.Month) ([]WeekView, error) {
	weeks := s.cal.MonthDates(year, month)
	out := make([]WeekView, 0, len(weeks))
	for _, w := range weeks {
		v, err := s.weekView(w)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WeekDates returns the given week of year.
func (s *CalendarService) WeekDates(year, week int) (WeekView, error) {
	w, err := s.cal.WeekDates(year, week)
	if err != nil {
		return WeekView{}, err
	}
	return s.weekView(w)
}

// WeekOf returns the week containing t together with the year owning it.
func (s *CalendarService) WeekOf(t time.Time) (int, WeekView, error) {
	year, w := s.cal.WeekDatesByDate(t.In(s.settings.Location()))
	v, err := s.weekView(w)
	return year, v, err
}

func (s *CalendarService) weekView(w weekcal.Week) (WeekView, error) {
	v := WeekView{Number: w.Number}
	loc := s.settings.Location()
	for i, d := range w.Dates {
		y, m, dd := d.Date()
		has, err := s.events.HasEventInRange(timerange.Day(y, m, dd, loc))
		if err != nil {
			return WeekView{}, err
		}
		v.Days[i] = Day{Year: y, Month: m, Day: dd, HasEvent: has}
	}
	return v, nil
}

// DateInfo describes t in the configured zone.
func (s *CalendarService) DateInfo(t time.Time) DateInfo {
	t = t.In(s.settings.Location())
	return DateInfo{
		Year:       t.Year(),
		Month:      t.Month(),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
		Week:       s.cal.WeekNumber(t),
	}
}

// Now describes the current time.
func (s *CalendarService) Now() DateInfo {
	return s.DateInfo(s.now())
}

// ThisWeek returns the week containing the current time.
func (s *CalendarService) ThisWeek() (int, WeekView, error) {
	return s.WeekOf(s.now())
}

func (s *CalendarService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
