package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"weekcal/internal/agenda"
	"weekcal/internal/model"
)

// renderWeeks prints a grid with one row per week. Days carrying events are
// marked with '*'; days outside month (when non-zero) are shown as '.'.
func renderWeeks(w io.Writer, weeks []agenda.WeekView, first time.Weekday, month time.Month) {
	var b strings.Builder
	b.WriteString(" Wk")
	for i := range 7 {
		fmt.Fprintf(&b, "  %s", time.Weekday((int(first)+i)%7).String()[:2])
	}
	b.WriteString("\n")

	for _, wk := range weeks {
		fmt.Fprintf(&b, "%3d", wk.Number)
		for _, d := range wk.Days {
			mark := " "
			if d.HasEvent {
				mark = "*"
			}
			if month != 0 && d.Month != month {
				fmt.Fprintf(&b, "  .%s", mark)
				continue
			}
			fmt.Fprintf(&b, " %2d%s", d.Day, mark)
		}
		b.WriteString("\n")
	}
	io.WriteString(w, b.String())
}

func renderAgenda(w io.Writer, day time.Time, occ []model.Occurrence) {
	fmt.Fprintf(w, "%s\n", day.Format("Monday, 2006-01-02"))
	if len(occ) == 0 {
		fmt.Fprintln(w, "  no events")
		return
	}
	for _, o := range occ {
		fmt.Fprintf(w, "  %s-%s  %s  [%s]\n", o.Start.Format("15:04"), o.End.Format("15:04"), o.Title, o.EventID)
	}
}

func renderEvent(w io.Writer, v agenda.EventView) {
	fmt.Fprintf(w, "ID:     %s\n", v.ID)
	fmt.Fprintf(w, "Title:  %s\n", v.Title)
	fmt.Fprintf(w, "Date:   %04d-%02d-%02d\n", v.Year, int(v.Month), v.Day)
	fmt.Fprintf(w, "Time:   %s-%s\n", v.Start(), v.End())
	if v.Recurrent {
		fmt.Fprintf(w, "Repeat: %s\n", v.Recurrence)
	}
}
