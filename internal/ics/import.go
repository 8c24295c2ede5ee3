// Package ics converts events to and from iCalendar (RFC 5545) files.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/recurrence"
)

// Draft is a VEVENT read from a calendar file, validated but not yet
// assigned a store ID.
type Draft struct {
	UID   string
	Title model.Title
	Start time.Time
	End   time.Time
	// Rule is nil for single events.
	Rule *recurrence.Rule
}

// Import parses r and returns one draft per usable VEVENT. Events missing a
// UID, DTSTART or SUMMARY, or carrying rules that cannot be represented
// (several RRULEs, EXDATE, RDATE, unknown rule parts) are logged and
// skipped. Only a calendar that fails to parse as a whole is an error.
func Import(r io.Reader) ([]Draft, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	drafts := make([]Draft, 0)
	for _, ve := range cal.Events() {
		d, err := parseVEvent(ve)
		if err != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent skipped", err, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		drafts = append(drafts, d)
	}

	appLog.Info("ics import parsed", "events", len(cal.Events()), "usable", len(drafts))
	return drafts, nil
}

func parseVEvent(ve *ical.VEvent) (Draft, error) {
	var out Draft

	out.UID = propValue(ve, ical.ComponentPropertyUniqueId)
	if out.UID == "" {
		return out, errors.New("missing UID")
	}

	title, err := model.NewTitle(propValue(ve, ical.ComponentPropertySummary))
	if err != nil {
		return out, fmt.Errorf("summary: %w", err)
	}
	out.Title = title

	if ve.GetProperty(ical.ComponentPropertyDtStart) == nil {
		return out, errors.New("missing DTSTART")
	}
	if out.Start, err = ve.GetStartAt(); err != nil {
		return out, fmt.Errorf("dtstart: %w", err)
	}
	// Without DTEND the event is treated as an instant.
	out.End = out.Start
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if out.End, err = ve.GetEndAt(); err != nil {
			return out, fmt.Errorf("dtend: %w", err)
		}
	}
	if out.End.Before(out.Start) {
		return out, fmt.Errorf("dtend %s is before dtstart %s", out.End, out.Start)
	}

	for _, p := range []ical.ComponentProperty{ical.ComponentPropertyExdate, ical.ComponentPropertyRdate} {
		if ve.GetProperty(p) != nil {
			return out, fmt.Errorf("%s is not supported", p)
		}
	}

	rules := ve.GetProperties(ical.ComponentPropertyRrule)
	switch len(rules) {
	case 0:
	case 1:
		if out.Rule, err = recurrence.FromString(rules[0].Value); err != nil {
			return out, fmt.Errorf("rrule: %w", err)
		}
	default:
		return out, fmt.Errorf("%d RRULEs, only one is supported", len(rules))
	}

	return out, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}
