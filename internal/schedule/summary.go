package schedule

import (
	"time"

	"github.com/username/internship-planner/pkg/dateutil"
)

// Summary holds the headline figures shown above the ledger
type Summary struct {
	Start          time.Time
	Completion     time.Time // zero when the schedule cannot complete
	TotalDays      int       // calendar days from start to completion inclusive
	WorkingDays    int       // days with hours credited
	HolidayDays    int
	HoursWorked    float64
	Target         float64
	EstimatedWeeks float64 // working days over working days per template week
}

// Summarize derives the summary of a computed schedule
func Summarize(s *Schedule, weekdays WeekdayHours) Summary {
	sum := Summary{
		Start:       s.Start,
		Target:      s.Target,
		HoursWorked: s.Accumulated(),
		TotalDays:   len(s.Entries),
	}

	for _, e := range s.Entries {
		if e.HoursToday > 0 {
			sum.WorkingDays++
		}
		if e.Holiday {
			sum.HolidayDays++
		}
	}

	if end, ok := s.Completion.Get(); ok {
		sum.Completion = end
		sum.TotalDays = dateutil.DaysBetween(s.Start, end) + 1
	}

	if perWeek := weekdays.WorkingDays(); perWeek > 0 {
		sum.EstimatedWeeks = float64(sum.WorkingDays) / float64(perWeek)
	}

	return sum
}
