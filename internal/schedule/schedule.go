// Package schedule computes the day-by-day hours ledger for a fixed target.
//
// The ledger starts at the configured start date and advances one calendar
// day at a time. Holidays contribute no hours. Every other day is credited
// with the hours the weekday template assigns to it, with the final working
// day clamped so the running total lands exactly on the target.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/samber/mo"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/pkg/dateutil"
)

// DefaultHolidayNote is the observation shown on holidays that carry no explicit note
const DefaultHolidayNote = "Holiday/No-activity day"

// DefaultMaxDays caps the simulation at twenty years of calendar days
const DefaultMaxDays = 20 * 366

// ErrInvalidParams is returned by Params.Validate
var ErrInvalidParams = errors.New("invalid schedule parameters")

// WeekdayHours is the planned hours per weekday, indexed Monday=0 .. Sunday=6
type WeekdayHours [7]float64

// Weekly returns the planned hours of a full week
func (w WeekdayHours) Weekly() float64 {
	total := 0.0
	for _, h := range w {
		total += h
	}
	return total
}

// WorkingDays returns how many weekdays have positive hours
func (w WeekdayHours) WorkingDays() int {
	n := 0
	for _, h := range w {
		if h > 0 {
			n++
		}
	}
	return n
}

// For returns the planned hours for the weekday of date
func (w WeekdayHours) For(date time.Time) float64 {
	return w[calendar.WeekdayIndex(date)]
}

// Params are the fixed inputs of a schedule computation
type Params struct {
	Start       time.Time
	TotalHours  float64
	Weekdays    WeekdayHours
	Locale      calendar.Locale
	HolidayNote string // defaults to DefaultHolidayNote
	MaxDays     int    // 0 means DefaultMaxDays
}

// Validate checks the preconditions Compute relies on
func (p Params) Validate() error {
	if p.Start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidParams)
	}
	if p.TotalHours <= 0 || math.IsNaN(p.TotalHours) || math.IsInf(p.TotalHours, 0) {
		return fmt.Errorf("%w: total hours must be positive, got %v", ErrInvalidParams, p.TotalHours)
	}
	for i, h := range p.Weekdays {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return fmt.Errorf("%w: hours for %s must be a non-negative number, got %v",
				ErrInvalidParams, calendar.LocaleEN.WeekdayName(i), h)
		}
	}
	if p.MaxDays < 0 {
		return fmt.Errorf("%w: max days must not be negative", ErrInvalidParams)
	}
	return nil
}

func (p Params) holidayNote() string {
	if p.HolidayNote == "" {
		return DefaultHolidayNote
	}
	return p.HolidayNote
}

// Entry is one calendar day of the ledger
type Entry struct {
	Date             time.Time
	Weekday          int // Monday=0
	WeekdayName      string
	HoursToday       float64
	HoursAccumulated float64
	Observation      string
	Holiday          bool
}

// Schedule is a computed ledger and its completion date
type Schedule struct {
	Start      time.Time
	Target     float64
	Entries    []Entry
	Completion mo.Option[time.Time]
	// Truncated reports that the day bound stopped the simulation before the target
	Truncated bool
}

// Complete reports whether the target was reached
func (s *Schedule) Complete() bool {
	return s.Completion.IsPresent()
}

// Accumulated returns the running total after the last entry
func (s *Schedule) Accumulated() float64 {
	if len(s.Entries) == 0 {
		return 0
	}
	return s.Entries[len(s.Entries)-1].HoursAccumulated
}

// Index returns the entries keyed by date
func (s *Schedule) Index() map[time.Time]*Entry {
	idx := make(map[time.Time]*Entry, len(s.Entries))
	for i := range s.Entries {
		idx[s.Entries[i].Date] = &s.Entries[i]
	}
	return idx
}

// Lookup returns the entry for date, if the date is in the ledger
func (s *Schedule) Lookup(date time.Time) (Entry, bool) {
	if len(s.Entries) == 0 {
		return Entry{}, false
	}
	// Entries are consecutive days, so the offset is the position
	i := dateutil.DaysBetween(s.Entries[0].Date, date)
	if i < 0 || i >= len(s.Entries) {
		return Entry{}, false
	}
	return s.Entries[i], true
}

// FormatHours renders hours without trailing zeros ("4", "2.5")
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
