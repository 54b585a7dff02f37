package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/holidays"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// EnvPrefix prefixes environment overrides, e.g. PLANNER_SCHEDULE_TOTAL_HOURS
const EnvPrefix = "PLANNER"

// Config represents application configuration
type Config struct {
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Display  DisplayConfig  `mapstructure:"display"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when only defaults apply
	File string `mapstructure:"-"`
}

// ScheduleConfig represents the fixed schedule parameters
type ScheduleConfig struct {
	StartDate    string             `mapstructure:"start_date"`
	TotalHours   float64            `mapstructure:"total_hours"`
	WeekdayHours WeekdayHoursConfig `mapstructure:"weekday_hours"`
	HolidayNote  string             `mapstructure:"holiday_note"`
	MaxDays      int                `mapstructure:"max_days"`
}

// WeekdayHoursConfig is the planned hours per weekday
type WeekdayHoursConfig struct {
	Monday    float64 `mapstructure:"monday"`
	Tuesday   float64 `mapstructure:"tuesday"`
	Wednesday float64 `mapstructure:"wednesday"`
	Thursday  float64 `mapstructure:"thursday"`
	Friday    float64 `mapstructure:"friday"`
	Saturday  float64 `mapstructure:"saturday"`
	Sunday    float64 `mapstructure:"sunday"`
}

// HolidaysConfig represents holiday sources merged at computation time
type HolidaysConfig struct {
	Rules  []RuleConfig `mapstructure:"rules"`
	Files  []string     `mapstructure:"files"` // .ics or plain text, never written
	Remote RemoteConfig `mapstructure:"remote"`
}

// RuleConfig represents a recurring holiday
type RuleConfig struct {
	Rule        string `mapstructure:"rule"`
	Description string `mapstructure:"description"`
	Start       string `mapstructure:"start"`
}

// RemoteConfig represents the BrasilAPI holiday service
type RemoteConfig struct {
	URL      string `mapstructure:"url"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

// StorageConfig represents holiday/observation persistence
type StorageConfig struct {
	Driver           string `mapstructure:"driver"` // "csv", "state" or "sqlite"
	Dir              string `mapstructure:"dir"`
	HolidaysFile     string `mapstructure:"holidays_file"`
	ObservationsFile string `mapstructure:"observations_file"`
	Path             string `mapstructure:"path"`
}

// DisplayConfig represents presentation settings
type DisplayConfig struct {
	Locale string `mapstructure:"locale"`
}

// WatchConfig represents watch mode settings
type WatchConfig struct {
	Debounce string `mapstructure:"debounce"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// setDefaults reproduces the reference internship: 240 hours from
// 2025-11-14 on a Mon 4 / Wed 4 / Thu 8 / Fri 4 week
func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.start_date", "2025-11-14")
	v.SetDefault("schedule.total_hours", 240)
	v.SetDefault("schedule.weekday_hours.monday", 4)
	v.SetDefault("schedule.weekday_hours.tuesday", 0)
	v.SetDefault("schedule.weekday_hours.wednesday", 4)
	v.SetDefault("schedule.weekday_hours.thursday", 8)
	v.SetDefault("schedule.weekday_hours.friday", 4)
	v.SetDefault("schedule.weekday_hours.saturday", 0)
	v.SetDefault("schedule.weekday_hours.sunday", 0)
	v.SetDefault("schedule.holiday_note", schedule.DefaultHolidayNote)
	v.SetDefault("schedule.max_days", schedule.DefaultMaxDays)

	v.SetDefault("holidays.rules", []RuleConfig{})
	v.SetDefault("holidays.files", []string{})
	v.SetDefault("holidays.remote.url", holidays.DefaultBrasilAPIURL)
	v.SetDefault("holidays.remote.cache_ttl", "24h")

	v.SetDefault("storage.driver", "csv")
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.holidays_file", "holidays.csv")
	v.SetDefault("storage.observations_file", "observations.csv")
	v.SetDefault("storage.path", "")

	v.SetDefault("display.locale", "en")
	v.SetDefault("watch.debounce", "250ms")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 30)
}

// Load loads configuration from file. With an empty configPath a missing
// config.yaml is not an error and the defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.internship-planner")
		v.AddConfigPath("/etc/internship-planner")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()
	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}

	for i, r := range c.Holidays.Rules {
		if strings.TrimSpace(r.Rule) == "" {
			return fmt.Errorf("holidays.rules[%d].rule is required", i)
		}
		if r.Start != "" {
			if _, err := dateutil.ParseDate(r.Start); err != nil {
				return fmt.Errorf("holidays.rules[%d].start: %w", i, err)
			}
		}
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "", "csv", "state", "json", "yaml", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("storage.driver must be 'csv', 'state' or 'sqlite', got '%s'", c.Storage.Driver)
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log.level must be one of debug, info, warn, error, got '%s'", c.Log.Level)
		}
	}

	return nil
}

// Params builds the schedule parameters
func (c *Config) Params() (schedule.Params, error) {
	start, err := dateutil.ParseDate(c.Schedule.StartDate)
	if err != nil {
		return schedule.Params{}, fmt.Errorf("schedule.start_date: %w", err)
	}

	locale, err := calendar.ParseLocale(c.Display.Locale)
	if err != nil {
		return schedule.Params{}, fmt.Errorf("display.locale: %w", err)
	}

	p := schedule.Params{
		Start:       start,
		TotalHours:  c.Schedule.TotalHours,
		Weekdays:    c.Schedule.WeekdayHours.Hours(),
		Locale:      locale,
		HolidayNote: c.Schedule.HolidayNote,
		MaxDays:     c.Schedule.MaxDays,
	}
	if err := p.Validate(); err != nil {
		return schedule.Params{}, err
	}
	return p, nil
}

// Hours returns the template indexed Monday=0
func (w WeekdayHoursConfig) Hours() schedule.WeekdayHours {
	return schedule.WeekdayHours{w.Monday, w.Tuesday, w.Wednesday, w.Thursday, w.Friday, w.Saturday, w.Sunday}
}

// HolidayRules converts the configured rules
func (c *HolidaysConfig) HolidayRules() []holidays.Rule {
	rules := make([]holidays.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rule := holidays.Rule{RRule: r.Rule, Description: r.Description}
		if start, err := dateutil.ParseDate(r.Start); err == nil {
			rule.Start = start
		}
		rules = append(rules, rule)
	}
	return rules
}

// StoreConfig converts the storage section
func (c *StorageConfig) StoreConfig() store.Config {
	return store.Config{
		Driver:           c.Driver,
		Dir:              c.Dir,
		HolidaysFile:     c.HolidaysFile,
		ObservationsFile: c.ObservationsFile,
		Path:             c.Path,
	}
}

// GetCacheTTL returns cache TTL duration
func (c *RemoteConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetDebounce returns the watch debounce duration
func (c *WatchConfig) GetDebounce() time.Duration {
	if c.Debounce == "" {
		return 250 * time.Millisecond
	}
	duration, err := time.ParseDuration(c.Debounce)
	if err != nil || duration <= 0 {
		return 250 * time.Millisecond
	}
	return duration
}

// ExpandEnvVars expands environment variables in paths
func (c *Config) ExpandEnvVars() {
	c.Storage.Dir = os.ExpandEnv(c.Storage.Dir)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Storage.HolidaysFile = os.ExpandEnv(c.Storage.HolidaysFile)
	c.Storage.ObservationsFile = os.ExpandEnv(c.Storage.ObservationsFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
	for i, f := range c.Holidays.Files {
		c.Holidays.Files[i] = os.ExpandEnv(f)
	}
}
