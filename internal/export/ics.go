package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/pkg/dateutil"
)

// ErrNoEvents is returned when a calendar would have no events to encode
var ErrNoEvents = errors.New("nothing to export: the schedule has no working days")

// DefaultProductID is the PRODID of exported calendars
const DefaultProductID = "-//internship-planner//schedule//EN"

// uidNamespace seeds the name-based event UIDs so re-exports keep stable identities
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/username/internship-planner"))

// ICSOptions controls calendar export
type ICSOptions struct {
	ProductID       string
	IncludeHolidays bool
	// Stamp is written as DTSTAMP; zero means the current time
	Stamp time.Time
}

// EventUID returns the stable UID for the event of kind on date
func EventUID(kind string, date time.Time) string {
	return uuid.NewSHA1(uidNamespace, []byte(kind+":"+dateutil.FormatISO(date))).String()
}

// BuildCalendar creates one all-day event per working day of the ledger and,
// optionally, per holiday
func BuildCalendar(s *schedule.Schedule, opts ICSOptions) *ical.Calendar {
	prodID := opts.ProductID
	if prodID == "" {
		prodID = DefaultProductID
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	stamp = stamp.UTC()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, e := range s.Entries {
		switch {
		case e.HoursToday > 0:
			ev := newDayEvent("work", e.Date, stamp)
			ev.Props.SetText(ical.PropSummary, fmt.Sprintf("Internship %sh (%sh/%sh)",
				schedule.FormatHours(e.HoursToday),
				schedule.FormatHours(e.HoursAccumulated),
				schedule.FormatHours(s.Target)))
			if e.Observation != "" {
				ev.Props.SetText(ical.PropDescription, e.Observation)
			}
			cal.Children = append(cal.Children, ev.Component)
		case e.Holiday && opts.IncludeHolidays:
			ev := newDayEvent("holiday", e.Date, stamp)
			ev.Props.SetText(ical.PropSummary, e.Observation)
			ev.Props.SetText("TRANSP", "TRANSPARENT")
			cal.Children = append(cal.Children, ev.Component)
		}
	}

	return cal
}

func newDayEvent(kind string, date, stamp time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, EventUID(kind, date))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.SetDate(ical.PropDateTimeStart, date)
	ev.Props.SetDate(ical.PropDateTimeEnd, date.AddDate(0, 0, 1))
	return ev
}

// WriteICS writes the ledger as an iCalendar stream
func WriteICS(w io.Writer, s *schedule.Schedule, opts ICSOptions) error {
	return EncodeCalendar(w, BuildCalendar(s, opts))
}

// EncodeCalendar writes cal, or returns ErrNoEvents without writing when it
// has no events
func EncodeCalendar(w io.Writer, cal *ical.Calendar) error {
	if len(cal.Children) == 0 {
		return ErrNoEvents
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
