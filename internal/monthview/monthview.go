// Package monthview maps a computed schedule onto Monday-first month grids
package monthview

import (
	"fmt"
	"time"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/pkg/dateutil"
)

// LowHoursMax is the upper bound (inclusive) of the low-hours bucket
const LowHoursMax = 4.0

// hoursPrefix labels the hours in a cell tooltip
var hoursPrefix = map[calendar.Locale]string{
	calendar.LocaleEN:   "Hours",
	calendar.LocalePTBR: "Horas",
}

func tooltipPrefix(locale calendar.Locale) string {
	if p, ok := hoursPrefix[locale]; ok {
		return p + ": "
	}
	return hoursPrefix[calendar.LocaleEN] + ": "
}

// CellKind classifies a grid cell
type CellKind int

const (
	CellBlank   CellKind = iota // padding outside the month
	CellOutside                 // in the month, not in the schedule
	CellNoHours
	CellLow
	CellHigh
)

func (k CellKind) String() string {
	switch k {
	case CellBlank:
		return "blank"
	case CellOutside:
		return "outside"
	case CellNoHours:
		return "no-hours"
	case CellLow:
		return "low"
	case CellHigh:
		return "high"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell is one day square of a month grid
type Cell struct {
	Kind        CellKind
	Day         int // 0 for blank cells
	Date        time.Time
	Hours       float64
	HoursLabel  string
	Tooltip     string
	Observation string
	Holiday     bool
}

// InSchedule reports whether the cell has a ledger entry
func (c Cell) InSchedule() bool {
	return c.Kind >= CellNoHours
}

// Month is the grid for one calendar month
type Month struct {
	Label string
	Year  int
	Month time.Month
	Weeks [][7]Cell
}

// View is the ordered list of month grids covering a schedule
type View []Month

// ByLabel returns the months keyed by their "Month Year" label
func (v View) ByLabel() map[string]Month {
	out := make(map[string]Month, len(v))
	for _, m := range v {
		out[m.Label] = m
	}
	return out
}

// Labels returns month labels in calendar order
func (v View) Labels() []string {
	labels := make([]string, len(v))
	for i, m := range v {
		labels[i] = m.Label
	}
	return labels
}

// Classify maps a day's hours onto a bucket
func Classify(hours float64) CellKind {
	switch {
	case hours <= 0:
		return CellNoHours
	case hours <= LowHoursMax:
		return CellLow
	default:
		return CellHigh
	}
}

// Build lays out the schedule month by month, from the start month through
// the completion month. A schedule without completion yields an empty view.
func Build(s *schedule.Schedule, locale calendar.Locale) View {
	end, ok := s.Completion.Get()
	if !ok {
		return nil
	}

	index := s.Index()
	prefix := tooltipPrefix(locale)
	var view View

	for current := dateutil.StartOfMonth(s.Start); !current.After(end); current = dateutil.NextMonth(current) {
		year, month := current.Year(), current.Month()
		grid := calendar.MonthGrid(year, month)

		m := Month{
			Label: locale.MonthLabel(year, month),
			Year:  year,
			Month: month,
			Weeks: make([][7]Cell, len(grid)),
		}

		for w, week := range grid {
			for d, day := range week {
				if day == 0 {
					m.Weeks[w][d] = Cell{Kind: CellBlank}
					continue
				}
				date := dateutil.Date(year, month, day)
				m.Weeks[w][d] = buildCell(date, index[date], prefix)
			}
		}

		view = append(view, m)
	}

	return view
}

func buildCell(date time.Time, entry *schedule.Entry, prefix string) Cell {
	cell := Cell{
		Kind: CellOutside,
		Day:  date.Day(),
		Date: date,
	}
	if entry == nil {
		return cell
	}

	cell.Kind = Classify(entry.HoursToday)
	cell.Hours = entry.HoursToday
	cell.HoursLabel = schedule.FormatHours(entry.HoursToday) + "h"
	cell.Observation = entry.Observation
	cell.Holiday = entry.Holiday
	cell.Tooltip = prefix + cell.HoursLabel
	if entry.Observation != "" {
		cell.Tooltip += " | " + entry.Observation
	}

	return cell
}
