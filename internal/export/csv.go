// Package export serialises a computed schedule for use outside the planner
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/pkg/dateutil"
)

// LedgerRow is one CSV row of the exported ledger
type LedgerRow struct {
	Date             string `csv:"Date"`
	Weekday          string `csv:"Weekday"`
	HoursToday       string `csv:"HoursToday"`
	HoursAccumulated string `csv:"HoursAccumulated"`
	Observation      string `csv:"Observation"`
}

// Rows converts ledger entries to CSV rows. Dates are ISO formatted.
func Rows(s *schedule.Schedule) []*LedgerRow {
	rows := make([]*LedgerRow, 0, len(s.Entries))
	for _, e := range s.Entries {
		rows = append(rows, &LedgerRow{
			Date:             dateutil.FormatISO(e.Date),
			Weekday:          e.WeekdayName,
			HoursToday:       schedule.FormatHours(e.HoursToday),
			HoursAccumulated: schedule.FormatHours(e.HoursAccumulated),
			Observation:      e.Observation,
		})
	}
	return rows
}

// WriteCSV writes the ledger as CSV with a header row
func WriteCSV(w io.Writer, s *schedule.Schedule) error {
	rows := Rows(s)
	if len(rows) == 0 {
		// Header-only output for an empty ledger
		if _, err := io.WriteString(w, "Date,Weekday,HoursToday,HoursAccumulated,Observation\n"); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		return nil
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// DefaultFileName is the export file name for a schedule starting on start
func DefaultFileName(start time.Time, ext string) string {
	return fmt.Sprintf("schedule_%s.%s", start.Format("20060102"), ext)
}
