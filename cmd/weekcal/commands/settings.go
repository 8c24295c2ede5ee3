package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weekcal/internal/config"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := appCtx.Config
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:          %s\n", appCtx.ConfigPath)
			fmt.Fprintf(out, "timezone:        %s\n", c.Location())
			fmt.Fprintf(out, "iso8601:         %t\n", c.UseISO8601())
			fmt.Fprintf(out, "week_start:      %s\n", strings.ToLower(c.FirstWeekday().String()))
			fmt.Fprintf(out, "events_file:     %s\n", c.EventsPath(appCtx.ConfigPath))
			fmt.Fprintf(out, "log_level:       %s\n", c.LogLevel)
			fmt.Fprintf(out, "refresh:         %s\n", c.RefreshCron)
			fmt.Fprintf(out, "max_occurrences: %d\n", c.MaxOccurrences)
			now := appCtx.Dates.Now()
			fmt.Fprintf(out, "now:             %04d-%02d-%02d %02d:%02d (week %d)\n",
				now.Year, int(now.Month), now.Day, now.Hour, now.Minute, now.Week)
			return nil
		},
	}
	cmd.AddCommand(settingsSetCmd())
	return cmd
}

func settingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a setting and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Work on a copy so a rejected value leaves the loaded config as is.
			c := *appCtx.Config
			if err := setSetting(&c, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(appCtx.ConfigPath, &c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func setSetting(c *config.Config, key, value string) error {
	switch key {
	case "timezone":
		c.Timezone = value
	case "iso8601":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("iso8601: %w", err)
		}
		c.ISO = b
	case "week_start":
		c.WeekStart = value
	case "events_file":
		c.EventsFile = value
	case "log_level":
		c.LogLevel = value
	case "refresh":
		c.RefreshCron = value
	case "max_occurrences":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_occurrences: %w", err)
		}
		c.MaxOccurrences = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
