package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekcal/internal/recurrence"
	"weekcal/internal/timerange"
)

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  Stand-up \n")
	require.NoError(t, err)
	assert.Equal(t, Title("Stand-up"), title)

	// "e" + combining acute composes into a single rune.
	title, err = NewTitle("Cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", title.String())

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := NewTitle(blank)
		assert.ErrorIs(t, err, ErrBlankTitle)
	}
}

func TestNewEventInvariants(t *testing.T) {
	start := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	rule, err := recurrence.FromString("FREQ=DAILY")
	require.NoError(t, err)

	e, err := NewEvent("a", "Gym", start, end, true, rule)
	require.NoError(t, err)
	assert.Equal(t, start, e.Start())
	assert.Equal(t, end, e.End())
	assert.Equal(t, time.Hour, e.Duration())
	assert.True(t, e.Span.IncludesStart())
	assert.True(t, e.Span.IncludesEnd())

	_, err = NewEvent("a", "Gym", start, end, true, nil)
	assert.ErrorIs(t, err, ErrMissingRule)

	_, err = NewEvent("a", "Gym", start, end, false, rule)
	assert.ErrorIs(t, err, ErrUnexpectedRule)

	_, err = NewEvent("a", " ", start, end, false, nil)
	assert.ErrorIs(t, err, ErrBlankTitle)

	_, err = NewEvent("a", "Gym", end, start, false, nil)
	assert.ErrorIs(t, err, ErrInvalidSpan)
	assert.ErrorIs(t, err, timerange.ErrInvalidRange)

	_, err = NewEvent("a", "Gym", time.Time{}, end, false, nil)
	assert.ErrorIs(t, err, ErrInvalidSpan)
}
