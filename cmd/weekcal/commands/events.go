package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"weekcal/internal/agenda"
	"weekcal/internal/recurrence"
)

// eventFlags are the flags shared by add and edit.
type eventFlags struct {
	title string
	date  string
	start string
	end   string
	rule  string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "event title")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&f.start, "start", "", "start time as HH:MM")
	cmd.Flags().StringVar(&f.end, "end", "", "end time as HH:MM")
	cmd.Flags().StringVarP(&f.rule, "repeat", "r", "", `recurrence rule, e.g. "FREQ=WEEKLY;BYWEEKDAY=MO,WE" ("none" clears it)`)
}

// apply overrides in with every flag that was set on cmd.
func (f *eventFlags) apply(cmd *cobra.Command, in *agenda.EventInput) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = f.title
	}
	if changed("date") {
		d, err := parseDate(f.date)
		if err != nil {
			return err
		}
		in.Year, in.Month, in.Day = d.Date()
	}
	if changed("start") {
		h, m, err := parseClock(f.start)
		if err != nil {
			return err
		}
		in.StartHour, in.StartMinute = h, m
	}
	if changed("end") {
		h, m, err := parseClock(f.end)
		if err != nil {
			return err
		}
		in.EndHour, in.EndMinute = h, m
	}
	if changed("repeat") {
		if strings.EqualFold(strings.TrimSpace(f.rule), "none") || strings.TrimSpace(f.rule) == "" {
			in.Recurrent, in.Recurrence = false, recurrence.Fields{}
			return nil
		}
		fields, err := recurrence.Parse(f.rule)
		if err != nil {
			return err
		}
		in.Recurrent, in.Recurrence = true, fields
	}
	return nil
}

func inputFromView(v agenda.EventView) (agenda.EventInput, error) {
	in := agenda.EventInput{
		Title: v.Title,
		Year:  v.Year, Month: v.Month, Day: v.Day,
		StartHour: v.StartHour, StartMinute: v.StartMinute,
		EndHour: v.EndHour, EndMinute: v.EndMinute,
		Recurrent: v.Recurrent,
	}
	if v.Recurrent {
		fields, err := recurrence.Parse(v.Recurrence)
		if err != nil {
			return in, err
		}
		in.Recurrence = fields
	}
	return in, nil
}

func addCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"title", "date", "start", "end"} {
				if !cmd.Flags().Changed(name) {
					return fmt.Errorf("--%s is required", name)
				}
			}
			var in agenda.EventInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			v, err := appCtx.Events.Insert(in)
			if err != nil {
				return err
			}
			renderEvent(cmd.OutOrStdout(), v)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the given fields of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := appCtx.Events.Get(args[0])
			if err != nil {
				return err
			}
			in, err := inputFromView(old)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			v, err := appCtx.Events.Update(args[0], in)
			if err != nil {
				return err
			}
			renderEvent(cmd.OutOrStdout(), v)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := appCtx.Events.Delete(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", v.ID, v.Title)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := appCtx.Events.Get(args[0])
			if errors.Is(err, agenda.ErrNotFound) {
				return fmt.Errorf("no event %s", args[0])
			}
			if err != nil {
				return err
			}
			renderEvent(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// printDay lists the occurrences of the civil date day.
func printDay(w io.Writer, day time.Time) error {
	occ, err := appCtx.Events.Agenda(day.Year(), day.Month(), day.Day())
	if err != nil {
		return err
	}
	renderAgenda(w, day, occ)
	return nil
}
