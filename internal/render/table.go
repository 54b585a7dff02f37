// Package render turns schedules and month views into text, terminal and
// XHTML output
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/pkg/dateutil"
)

const separator = "═══════════════════════════════════════════════════════════════════════"

// WriteTable prints the ledger as a fixed-width table
func WriteTable(w io.Writer, s *schedule.Schedule) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s  %-13s  %6s  %8s  %s\n", "Date", "Weekday", "Hours", "Total", "Observation")
	b.WriteString(separator + "\n")

	for _, e := range s.Entries {
		marker := " "
		if e.Holiday {
			marker = "*"
		}
		fmt.Fprintf(&b, "%-10s %s%-13s  %6s  %8s  %s\n",
			dateutil.FormatISO(e.Date),
			marker,
			e.WeekdayName,
			schedule.FormatHours(e.HoursToday)+"h",
			schedule.FormatHours(e.HoursAccumulated)+"h",
			e.Observation)
	}

	b.WriteString(separator + "\n")
	if end, ok := s.Completion.Get(); ok {
		fmt.Fprintf(&b, "Target of %sh reached on %s\n", schedule.FormatHours(s.Target), dateutil.FormatISO(end))
	} else {
		b.WriteString(NotReached(s) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// NotReached describes a schedule that stopped before its target
func NotReached(s *schedule.Schedule) string {
	return fmt.Sprintf("Target of %sh not reached: %sh after %d days",
		schedule.FormatHours(s.Target), schedule.FormatHours(s.Accumulated()), len(s.Entries))
}

// WriteSummary prints the headline figures of a schedule
func WriteSummary(w io.Writer, sum schedule.Summary) error {
	var b strings.Builder

	b.WriteString("\n📋 Schedule Summary\n")
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "  Start date:       %s\n", dateutil.FormatISO(sum.Start))
	if sum.Completion.IsZero() {
		b.WriteString("  End date:         not reached\n")
	} else {
		fmt.Fprintf(&b, "  End date:         %s (%d days after start)\n",
			dateutil.FormatISO(sum.Completion), dateutil.DaysBetween(sum.Start, sum.Completion))
	}
	fmt.Fprintf(&b, "  Total hours:      %sh of %sh\n", schedule.FormatHours(sum.HoursWorked), schedule.FormatHours(sum.Target))
	fmt.Fprintf(&b, "  Calendar days:    %d\n", sum.TotalDays)
	fmt.Fprintf(&b, "  Working days:     %d\n", sum.WorkingDays)
	fmt.Fprintf(&b, "  Holidays:         %d\n", sum.HolidayDays)
	fmt.Fprintf(&b, "  Estimated weeks:  %.1f\n", sum.EstimatedWeeks)

	_, err := io.WriteString(w, b.String())
	return err
}
