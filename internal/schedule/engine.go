package schedule

import (
	"math"
	"time"

	"github.com/samber/mo"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/pkg/dateutil"
)

// DateSet is a set of naive calendar dates
type DateSet map[time.Time]struct{}

// NewDateSet builds a DateSet from dates, normalising each to its calendar day
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[dateutil.StartOfDay(d)] = struct{}{}
	}
	return s
}

// Contains reports whether date is in the set
func (s DateSet) Contains(date time.Time) bool {
	_, ok := s[date]
	return ok
}

// Compute simulates the schedule day by day from p.Start until the
// accumulated hours reach p.TotalHours.
//
// Inputs are read, never modified. The caller is expected to have run
// p.Validate. When the target cannot be reached within the day bound the
// returned schedule has no completion date and is marked Truncated.
func Compute(p Params, holidays DateSet, observations map[time.Time]string) *Schedule {
	start := dateutil.StartOfDay(p.Start)
	holidays = normalizeSet(holidays)
	observations = normalizeNotes(observations)
	note := p.holidayNote()
	bound := dayBound(p, start, holidays)

	sched := &Schedule{
		Start:      start,
		Target:     p.TotalHours,
		Completion: mo.None[time.Time](),
	}

	accumulated := 0.0
	current := start

	for accumulated < p.TotalHours {
		if len(sched.Entries) >= bound {
			sched.Truncated = true
			break
		}

		weekday := calendar.WeekdayIndex(current)
		observation := observations[current]

		entry := Entry{
			Date:             current,
			Weekday:          weekday,
			WeekdayName:      p.Locale.WeekdayName(weekday),
			HoursAccumulated: accumulated,
			Observation:      observation,
		}

		// Holidays win over the weekday template
		if holidays.Contains(current) {
			entry.Holiday = true
			if entry.Observation == "" {
				entry.Observation = note
			}
			sched.Entries = append(sched.Entries, entry)
			current = current.AddDate(0, 0, 1)
			continue
		}

		planned := p.Weekdays[weekday]
		if planned > 0 {
			if accumulated+planned > p.TotalHours {
				planned = p.TotalHours - accumulated
				accumulated = p.TotalHours
			} else {
				accumulated += planned
			}

			entry.HoursToday = planned
			entry.HoursAccumulated = accumulated
			sched.Entries = append(sched.Entries, entry)

			if accumulated >= p.TotalHours {
				sched.Completion = mo.Some(current)
				break
			}
		} else {
			sched.Entries = append(sched.Entries, entry)
		}

		current = current.AddDate(0, 0, 1)
	}

	return sched
}

// dayBound is the number of days after which the simulation gives up.
// Past the last holiday every full week adds Weekly() hours, so the target is
// reachable within ceil(target/weekly) weeks of it.
func dayBound(p Params, start time.Time, holidays DateSet) int {
	limit := p.MaxDays
	if limit <= 0 {
		limit = DefaultMaxDays
	}

	weekly := p.Weekdays.Weekly()
	if weekly <= 0 {
		return min(7, limit)
	}

	weeks := math.Ceil(p.TotalHours / weekly)
	if weeks*7 > float64(limit) {
		return limit
	}
	bound := int(weeks)*7 + 7

	lastHoliday := 0
	for d := range holidays {
		if offset := dateutil.DaysBetween(start, d) + 1; offset > lastHoliday {
			lastHoliday = offset
		}
	}
	bound += lastHoliday

	return min(bound, limit)
}

func normalizeSet(in DateSet) DateSet {
	out := make(DateSet, len(in))
	for d := range in {
		out[dateutil.StartOfDay(d)] = struct{}{}
	}
	return out
}

func normalizeNotes(in map[time.Time]string) map[time.Time]string {
	out := make(map[time.Time]string, len(in))
	for d, text := range in {
		if text == "" {
			continue
		}
		out[dateutil.StartOfDay(d)] = text
	}
	return out
}
