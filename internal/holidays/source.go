// Package holidays provides sources of holiday dates that can be merged into
// the planner's holiday set: local files, iCalendar files, recurrence rules
// and the BrasilAPI national holiday service.
package holidays

import (
	"context"
	"time"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// Source yields holidays within an inclusive date range
type Source interface {
	Name() string
	Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error)
}

// inRange reports whether date falls within [from, to]. A zero bound is open.
func inRange(date, from, to time.Time) bool {
	if !from.IsZero() && date.Before(dateutil.StartOfDay(from)) {
		return false
	}
	if !to.IsZero() && date.After(dateutil.StartOfDay(to)) {
		return false
	}
	return true
}

// dedupe collapses duplicate dates, keeping the first description, and sorts by date
func dedupe(in []store.Holiday) []store.Holiday {
	set := store.NewHolidaySet(in...)
	return set.List()
}

// YearRange returns the first and last day of year
func YearRange(year int) (time.Time, time.Time) {
	return dateutil.Date(year, time.January, 1), dateutil.Date(year, time.December, 31)
}

