package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"weekcal/internal/app"
	"weekcal/internal/config"
	appLog "weekcal/internal/log"
)

var (
	configPath string
	logLevel   string
	appCtx     *app.App

	// clock, if set, replaces the wall clock of the calendar service.
	clock func() time.Time
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "weekcal",
		Short:        "Personal calendar with week numbers and recurring events",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				dir, err := os.UserConfigDir()
				if err != nil {
					return err
				}
				configPath = filepath.Join(dir, "weekcal", "config.yaml")
			}

			conf, err := config.Load(configPath)
			if err != nil {
				appLog.Error("failed to load config", err, "config_path", configPath)
				return err
			}

			// --log-level overrides the config file if provided.
			level := conf.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			appLog.SetLevel(appLog.ParseLevel(level))

			if appCtx, err = app.New(conf, configPath); err != nil {
				return err
			}
			appCtx.Dates.Clock = clock
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default <user config dir>/weekcal/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config if set)")

	root.AddCommand(
		monthCmd(), weekCmd(), dayCmd(),
		addCmd(), editCmd(), rmCmd(), showCmd(),
		exportCmd(), importCmd(),
		watchCmd(), settingsCmd(),
	)
	return root
}
