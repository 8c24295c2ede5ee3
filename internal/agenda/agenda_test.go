package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"

	"weekcal/internal/config"
	"weekcal/internal/ics"
	"weekcal/internal/matcher"
	"weekcal/internal/model"
	"weekcal/internal/recurrence"
	"weekcal/internal/store"
	"weekcal/internal/weekcal"
)

type fixture struct {
	cfg      *config.Config
	events   *store.MemoryStore
	service  *EventService
	calendar *CalendarService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := &config.Config{Timezone: "Europe/Berlin", ISO: true}
	cfg.Normalize()
	require.NoError(t, cfg.Validate())

	m := matcher.New(matcher.Config{FirstWeekday: cfg.FirstWeekday(), Location: cfg.Location()})
	events := store.NewMemory(nil, m)
	cal, err := weekcal.New(cfg.UseISO8601(), cfg.FirstWeekday())
	require.NoError(t, err)

	return fixture{
		cfg:      cfg,
		events:   events,
		service:  NewEventService(cfg, nil, events, m),
		calendar: NewCalendarService(cfg, cal, events),
	}
}

func meeting(day int) EventInput {
	return EventInput{
		Title: "Meeting",
		Year:  2023, Month: time.January, Day: day,
		StartHour: 9, StartMinute: 30,
		EndHour: 10, EndMinute: 15,
	}
}

func TestInsertAndGet(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.Insert(meeting(3))
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "09:30", v.Start())
	assert.Equal(t, "10:15", v.End())
	assert.Equal(t, 1, f.events.Len())

	got, err := f.service.Get(string(v.ID))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// Stored in UTC, shown in the configured zone.
	e, ok, err := f.events.Find(v.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, e.Start().UTC().Hour())
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get("00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.service.Get("garbage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMustExist(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update("", meeting(3))
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = f.service.Update("00000000-0000-0000-0000-000000000001", meeting(3))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.service.Delete("")
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = f.service.Delete("00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.events.Len())
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	v, err := f.service.Insert(meeting(3))
	require.NoError(t, err)

	in := meeting(4)
	in.Title = "  Standup  "
	in.Recurrent = true
	in.Recurrence = recurrence.Fields{Freq: recurrence.Weekly, ByWeekday: []string{"MO", "TH"}}

	upd, err := f.service.Update(string(v.ID), in)
	require.NoError(t, err)
	assert.Equal(t, v.ID, upd.ID)
	assert.Equal(t, "Standup", upd.Title)
	assert.Equal(t, 4, upd.Day)
	assert.True(t, upd.Recurrent)
	assert.Equal(t, "FREQ=WEEKLY;BYWEEKDAY=MO,TH", upd.Recurrence)

	del, err := f.service.Delete(string(v.ID))
	require.NoError(t, err)
	assert.Equal(t, upd, del)
	assert.Zero(t, f.events.Len())
}

func TestInsertRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(*EventInput){
		"blank title":    func(in *EventInput) { in.Title = " " },
		"no such date":   func(in *EventInput) { in.Month, in.Day = time.February, 30 },
		"no such time":   func(in *EventInput) { in.EndHour = 24 },
		"end before":     func(in *EventInput) { in.EndHour = 8 },
		"bad rule":       func(in *EventInput) { in.Recurrent = true; in.Recurrence = recurrence.Fields{Freq: "HOURLY"} },
		"missing freq":   func(in *EventInput) { in.Recurrent = true },
		"ordinal weekly": func(in *EventInput) { in.Recurrent = true; in.Recurrence = recurrence.Fields{Freq: recurrence.Weekly, ByWeekday: []string{"+1MO"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := meeting(3)
			mutate(&in)
			_, err := f.service.Insert(in)
			assert.Error(t, err)
		})
	}
	assert.Zero(t, f.events.Len())

	in := meeting(3)
	in.EndHour = 8
	_, err := f.service.Insert(in)
	assert.ErrorIs(t, err, model.ErrInvalidSpan)
}

func TestListByDateAndAgenda(t *testing.T) {
	f := newFixture(t)

	daily := meeting(1)
	daily.Title = "Gym"
	daily.StartHour, daily.EndHour = 18, 19
	daily.Recurrent = true
	daily.Recurrence = recurrence.Fields{Freq: recurrence.Daily}
	_, err := f.service.Insert(daily)
	require.NoError(t, err)
	_, err = f.service.Insert(meeting(3))
	require.NoError(t, err)

	views, err := f.service.ListByDate(2023, time.January, 3)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Gym", views[0].Title)
	// Recurring events are shown with their first occurrence.
	assert.Equal(t, 1, views[0].Day)

	occ, err := f.service.Agenda(2023, time.January, 3)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	assert.Equal(t, model.Title("Meeting"), occ[0].Title)
	assert.Equal(t, model.Title("Gym"), occ[1].Title)
	assert.Equal(t, 3, occ[1].Start.Day())
	assert.Equal(t, 18, occ[1].Start.Hour())

	views, err = f.service.ListByDate(2022, time.December, 31)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestWeekDatesHasEvent(t *testing.T) {
	f := newFixture(t)
	// 23:30 in Berlin is still Jan 3 locally but Jan 3 22:30 UTC.
	in := meeting(3)
	in.StartHour, in.StartMinute, in.EndHour, in.EndMinute = 23, 30, 23, 45
	_, err := f.service.Insert(in)
	require.NoError(t, err)

	w, err := f.calendar.WeekDates(2023, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Number)
	assert.Equal(t, Day{Year: 2023, Month: time.January, Day: 2}, w.Days[0])
	for i, d := range w.Days {
		assert.Equal(t, i == 1, d.HasEvent, "day %d", d.Day)
	}

	_, err = f.calendar.WeekDates(2023, 53)
	assert.ErrorIs(t, err, weekcal.ErrInvalidWeek)
}

func TestMonthDates(t *testing.T) {
	f := newFixture(t)
	in := meeting(31)
	in.Recurrent = true
	in.Recurrence = recurrence.Fields{Freq: recurrence.Weekly}
	_, err := f.service.Insert(in)
	require.NoError(t, err)

	weeks, err := f.calendar.MonthDates(2023, time.February)
	require.NoError(t, err)
	require.Len(t, weeks, 5)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, []int{weeks[0].Number, weeks[1].Number, weeks[2].Number, weeks[3].Number, weeks[4].Number})

	var marked []int
	for _, w := range weeks {
		for _, d := range w.Days {
			if d.HasEvent {
				marked = append(marked, d.Day)
			}
		}
	}
	// Tuesdays from Jan 31 on.
	assert.Equal(t, []int{31, 7, 14, 21, 28}, marked)
}

func TestDateInfoAndNow(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2023, time.January, 1, 23, 30, 0, 0, time.UTC)

	info := f.calendar.DateInfo(at)
	assert.Equal(t, DateInfo{Year: 2023, Month: time.January, Day: 2, Hour: 0, Minute: 30, Week: 1}, info)

	f.calendar.Clock = func() time.Time { return at }
	assert.Equal(t, info, f.calendar.Now())

	_, w, err := f.calendar.WeekOf(at)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Days[0].Day)
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	v, err := f.service.Insert(meeting(3))
	require.NoError(t, err)

	weekly, err := recurrence.FromString("FREQ=WEEKLY")
	require.NoError(t, err)
	start := time.Date(2023, time.January, 9, 12, 0, 0, 0, time.UTC)
	drafts := []ics.Draft{
		{UID: string(v.ID), Title: "Meeting moved", Start: start, End: start.Add(time.Hour)},
		{UID: "foreign@example.com", Title: "Lunch", Start: start, End: start.Add(time.Hour), Rule: weekly},
	}

	res, err := f.service.Import(drafts)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 1, Updated: 1}, res)
	assert.Equal(t, 2, f.events.Len())

	got, err := f.service.Get(string(v.ID))
	require.NoError(t, err)
	assert.Equal(t, "Meeting moved", got.Title)
	assert.Equal(t, 13, got.StartHour)

	occ, err := f.service.Agenda(2023, time.January, 16)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, model.Title("Lunch"), occ[0].Title)
}

func TestThisWeekFollowsClock(t *testing.T) {
	f := newFixture(t)
	// Sunday evening UTC is already Monday in Berlin.
	f.calendar.Clock = func() time.Time { return time.Date(2023, time.January, 8, 23, 30, 0, 0, time.UTC) }

	year, w, err := f.calendar.ThisWeek()
	require.NoError(t, err)
	assert.Equal(t, 2023, year)
	assert.Equal(t, 2, w.Number)
	assert.Equal(t, Day{Year: 2023, Month: time.January, Day: 9}, w.Days[0])
	assert.Equal(t, f.calendar.Now().Week, w.Number)
}

func TestServicesAcceptAnySettings(t *testing.T) {
	s := fixedSettings{loc: time.FixedZone("UTC+7", 7*3600)}
	m := matcher.New(matcher.Config{FirstWeekday: s.FirstWeekday(), Location: s.Location()})
	events := store.NewMemory(nil, m)
	svc := NewEventService(s, nil, events, m)

	in := meeting(3)
	in.StartHour, in.EndHour = 6, 7
	v, err := svc.Insert(in)
	require.NoError(t, err)

	e, ok, err := events.Find(v.ID)
	require.NoError(t, err)
	require.True(t, ok)
	// 06:30 at UTC+7 is the previous evening in UTC.
	assert.Equal(t, 2, e.Start().UTC().Day())
	assert.Equal(t, 23, e.Start().UTC().Hour())
}

type fixedSettings struct {
	loc *time.Location
}

func (s fixedSettings) Location() *time.Location { return s.loc }
func (s fixedSettings) UseISO8601() bool { return true }
func (s fixedSettings) FirstWeekday() time.Weekday { return time.Monday }
func (s fixedSettings) EventsPath(configPath string) string { return "events.csv" }
