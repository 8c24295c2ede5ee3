package ics

import (
	"io"
	"iter"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

const productID = "-//weekcal//weekcal//EN"

// Export writes events as a VCALENDAR with one VEVENT each and returns how
// many were written. Times are written in UTC; stamp becomes every event's
// DTSTAMP. A read error from events aborts the export before anything is
// written.
func Export(w io.Writer, events iter.Seq2[model.Event, error], stamp time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	n := 0
	for e, err := range events {
		if err != nil {
			return 0, err
		}
		ve := cal.AddEvent(e.ID.String())
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(e.Title.String())
		ve.SetStartAt(e.Start().UTC())
		ve.SetEndAt(e.End().UTC())
		if e.Recurrent {
			ve.AddRrule(e.Rule.RFCString())
		}
		n++
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return 0, err
	}
	appLog.Info("ics export written", "events", n)
	return n, nil
}
