// Package app wires the calendar services from a loaded configuration.
package app

import (
	"fmt"

	"weekcal/internal/agenda"
	"weekcal/internal/config"
	appLog "weekcal/internal/log"
	"weekcal/internal/matcher"
	"weekcal/internal/store"
	"weekcal/internal/weekcal"
)

// App bundles the services used by the CLI.
type App struct {
	Config     *config.Config
	ConfigPath string

	Calendar *weekcal.Calendar
	Matcher  *matcher.RRule
	Store    *store.CSVStore

	Events *agenda.EventService
	Dates  *agenda.CalendarService
}

// New builds the dependency graph and creates the events file if missing.
func New(cfg *config.Config, configPath string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cal, err := weekcal.New(cfg.UseISO8601(), cfg.FirstWeekday())
	if err != nil {
		return nil, err
	}
	m := matcher.New(matcher.Config{
		FirstWeekday:   cfg.FirstWeekday(),
		Location:       cfg.Location(),
		MaxOccurrences: cfg.MaxOccurrences,
	})

	codec := store.NewCodec(store.UUIDCodec{})
	events := store.NewCSV(cfg.EventsPath(configPath), codec, store.UUIDGenerator{}, m)
	if err := events.EnsureFile(); err != nil {
		return nil, fmt.Errorf("events file: %w", err)
	}

	appLog.Debug("app wired",
		"events", events.Path(),
		"timezone", cfg.Location().String(),
		"iso8601", cfg.UseISO8601(),
		"week_start", cfg.FirstWeekday().String(),
	)

	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Calendar:   cal,
		Matcher:    m,
		Store:      events,
		Events:     agenda.NewEventService(cfg, codec.IDs, events, m),
		Dates:      agenda.NewCalendarService(cfg, cal, events),
	}, nil
}
