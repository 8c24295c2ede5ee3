package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEventsFile     = "events.csv"
	DefaultRefresh        = "*/15 * * * *"
	DefaultMaxOccurrences = 500
	DefaultLogLevel       = "info"
)

// Settings is the read-only view of the configuration used by the
// calendar and event services.
type Settings interface {
	Location() *time.Location
	UseISO8601() bool
	FirstWeekday() time.Weekday
	EventsPath(configPath string) string
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone used for day boundaries and display
	// (e.g. "Europe/Berlin"). Empty or "Local" means the system zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// ISO selects ISO 8601 week numbering. When set the week always starts
	// on Monday and WeekStart is ignored.
	ISO bool `yaml:"iso8601" json:"iso8601"`

	// WeekStart controls which weekday is treated as the first day of the
	// week when ISO is off. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// EventsFile is the CSV event store. Relative paths are resolved
	// against the directory of the config file.
	EventsFile string `yaml:"events_file" json:"events_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a standard 5-field cron spec (e.g. "*/15 * * * *")
	// used by the watch command.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// MaxOccurrences caps how many occurrences a single recurring event may
	// expand to in one query.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:       "Local",
		ISO:            true,
		WeekStart:      "monday",
		EventsFile:     DefaultEventsFile,
		LogLevel:       DefaultLogLevel,
		RefreshCron:    DefaultRefresh,
		MaxOccurrences: DefaultMaxOccurrences,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" || c.ISO {
		c.WeekStart = "monday"
	}
	if c.EventsFile == "" {
		c.EventsFile = DefaultEventsFile
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefresh
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = DefaultMaxOccurrences
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := loadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		return fmt.Errorf("week_start %q: must be monday or sunday", c.WeekStart)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", c.RefreshCron, err)
	}
	return nil
}

// Location returns the configured zone, or UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) UseISO8601() bool { return c.ISO }

// FirstWeekday is Monday in ISO mode, otherwise taken from WeekStart.
func (c *Config) FirstWeekday() time.Weekday {
	if !c.ISO && c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// EventsPath resolves EventsFile relative to the config file's directory.
func (c *Config) EventsPath(configPath string) string {
	name := c.EventsFile
	if name == "" {
		name = DefaultEventsFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(configPath), name)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is read over the defaults, normalized and
//     validated. Keys missing from the file keep their default value.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save normalizes, validates and atomically writes cfg to path: the YAML
// goes to a temp file in the same directory which is synced, set to 0600
// and renamed over the target.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
