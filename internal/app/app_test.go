package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekcal/internal/agenda"
	"weekcal/internal/config"
	"weekcal/internal/recurrence"
)

func TestNewCreatesEventsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	a, err := New(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "events.csv"), a.Store.Path())

	_, err = os.Stat(a.Store.Path())
	assert.NoError(t, err)
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.ISO = false
	cfg.WeekStart = "sunday"
	require.NoError(t, cfg.Save(path))

	a, err := New(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, a.Calendar.FirstWeekday())

	v, err := a.Events.Insert(agenda.EventInput{
		Title: "Review",
		Year:  2023, Month: time.January, Day: 2,
		StartHour: 9, EndHour: 10,
		Recurrent:  true,
		Recurrence: recurrence.Fields{Freq: recurrence.Weekly, Interval: 2, ByWeekday: []string{"MO", "SU"}},
	})
	require.NoError(t, err)

	// A fresh wiring reads what the first one wrote.
	b, err := New(cfg, path)
	require.NoError(t, err)
	got, err := b.Events.Get(string(v.ID))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// With Sunday as week start, Sunday Jan 8 falls in the skipped week.
	views, err := b.Events.ListByDate(2023, time.January, 8)
	require.NoError(t, err)
	assert.Empty(t, views)
	views, err = b.Events.ListByDate(2023, time.January, 15)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	w, err := b.Dates.WeekDates(2023, 3)
	require.NoError(t, err)
	assert.Equal(t, 15, w.Days[0].Day)
	assert.True(t, w.Days[0].HasEvent)
	assert.True(t, w.Days[1].HasEvent)
	assert.False(t, w.Days[2].HasEvent)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timezone = "Nowhere/Special"
	_, err := New(cfg, filepath.Join(t.TempDir(), "config.yaml"))
	assert.Error(t, err)
}
