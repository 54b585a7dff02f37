// Package store persists the holiday set and the per-day observations.
//
// Drivers:
//   - "csv": two CSV files, holidays (date,description) and observations
//     (date,observation). This is the default.
//   - "state": one JSON or YAML document holding both, chosen by extension.
//   - "sqlite": a SQLite database file.
//
// Writes are last-write-wins; no driver offers transactional guarantees
// across the two collections.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/pkg/dateutil"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Holiday is a date that contributes no hours
type Holiday struct {
	Date        time.Time
	Description string
}

// HolidaySet holds holidays keyed by date. Adding a date twice keeps the first record.
type HolidaySet map[time.Time]Holiday

// NewHolidaySet builds a set, collapsing duplicate dates
func NewHolidaySet(holidays ...Holiday) HolidaySet {
	s := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		s.Add(h)
	}
	return s
}

// Add inserts h and reports whether the date was new
func (s HolidaySet) Add(h Holiday) bool {
	h.Date = dateutil.StartOfDay(h.Date)
	if _, ok := s[h.Date]; ok {
		return false
	}
	s[h.Date] = h
	return true
}

// Remove deletes the holiday on date and reports whether it existed
func (s HolidaySet) Remove(date time.Time) bool {
	date = dateutil.StartOfDay(date)
	if _, ok := s[date]; !ok {
		return false
	}
	delete(s, date)
	return true
}

// Contains reports whether date is a holiday
func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[dateutil.StartOfDay(date)]
	return ok
}

// List returns the holidays ordered by date
func (s HolidaySet) List() []Holiday {
	out := make([]Holiday, 0, len(s))
	for _, h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Dates returns the holiday dates in order
func (s HolidaySet) Dates() []time.Time {
	list := s.List()
	dates := make([]time.Time, len(list))
	for i, h := range list {
		dates[i] = h.Date
	}
	return dates
}

// Clone returns an independent copy
func (s HolidaySet) Clone() HolidaySet {
	out := make(HolidaySet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Observations maps a date to its free-text note. Empty text means no note.
type Observations map[time.Time]string

// Set stores text for date; blank text removes the note
func (o Observations) Set(date time.Time, text string) {
	date = dateutil.StartOfDay(date)
	text = strings.TrimSpace(text)
	if text == "" {
		delete(o, date)
		return
	}
	o[date] = text
}

// Clone returns an independent copy
func (o Observations) Clone() Observations {
	out := make(Observations, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same notes
func (o Observations) Equal(other Observations) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		if w, ok := other[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Dates returns the annotated dates in order
func (o Observations) Dates() []time.Time {
	dates := make([]time.Time, 0, len(o))
	for d := range o {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// HolidayStore loads and saves the holiday set
type HolidayStore interface {
	LoadHolidays(ctx context.Context) (HolidaySet, error)
	SaveHolidays(ctx context.Context, holidays HolidaySet) error
}

// ObservationStore loads and saves observations. Empty notes are never persisted.
type ObservationStore interface {
	LoadObservations(ctx context.Context) (Observations, error)
	SaveObservations(ctx context.Context, observations Observations) error
}

// Store is the full persistence API used by the planner
type Store interface {
	HolidayStore
	ObservationStore
	// Paths lists the files backing the store, for change watching
	Paths() []string
	Close() error
}

// Config configures storage
type Config struct {
	Driver           string
	Dir              string // base directory for relative paths
	HolidaysFile     string // csv driver
	ObservationsFile string // csv driver
	Path             string // state and sqlite drivers
}

const (
	defaultHolidaysFile     = "holidays.csv"
	defaultObservationsFile = "observations.csv"
	defaultStateFile        = "planner-state.json"
	defaultSQLiteFile       = "planner.db"
)

// Open initializes the configured store
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "csv":
		return NewCSVStore(
			resolve(cfg.Dir, cfg.HolidaysFile, defaultHolidaysFile),
			resolve(cfg.Dir, cfg.ObservationsFile, defaultObservationsFile),
			logger,
		), nil
	case "state", "json", "yaml":
		return NewStateStore(resolve(cfg.Dir, cfg.Path, defaultStateFile), logger), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(resolve(cfg.Dir, cfg.Path, defaultSQLiteFile), logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

func resolve(dir, path, fallback string) string {
	if strings.TrimSpace(path) == "" {
		path = fallback
	}
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
