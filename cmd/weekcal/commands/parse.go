package commands

import (
	"fmt"
	"strconv"
	"time"
)

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("time %q: want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// parseYearAnd reads the optional "YEAR N" positional pair used by month
// and week.
func parseYearAnd(args []string, what string) (year, n int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want YEAR %s", what)
	}
	if year, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("year %q: %w", args[0], err)
	}
	if n, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("%s %q: %w", what, args[1], err)
	}
	return year, n, nil
}
