package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weekcal/internal/agenda"
)

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YEAR MONTH]",
		Short: "Print a month grid with week numbers",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := appCtx.Dates.Now()
			year, month := now.Year, now.Month
			if len(args) > 0 {
				y, m, err := parseYearAnd(args, "MONTH")
				if err != nil {
					return err
				}
				if m < 1 || m > 12 {
					return fmt.Errorf("month %d: want 1..12", m)
				}
				year, month = y, time.Month(m)
			}

			weeks, err := appCtx.Dates.MonthDates(year, month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", month, year)
			renderWeeks(out, weeks, appCtx.Calendar.FirstWeekday(), month)
			return nil
		},
	}
}

func weekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week [YEAR WEEK]",
		Short: "Print the dates of a week",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				year, w, err := appCtx.Dates.ThisWeek()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d week %d\n", year, w.Number)
				renderWeeks(out, []agenda.WeekView{w}, appCtx.Calendar.FirstWeekday(), 0)
				return nil
			}

			year, n, err := parseYearAnd(args, "WEEK")
			if err != nil {
				return err
			}
			w, err := appCtx.Dates.WeekDates(year, n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d week %d\n", year, w.Number)
			renderWeeks(out, []agenda.WeekView{w}, appCtx.Calendar.FirstWeekday(), 0)
			return nil
		},
	}
}

func dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List the occurrences of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayArg(args)
			if err != nil {
				return err
			}
			return printDay(cmd.OutOrStdout(), day)
		},
	}
}

func dayArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		now := appCtx.Dates.Now()
		return time.Date(now.Year, now.Month, now.Day, 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(args[0])
}
