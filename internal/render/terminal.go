package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/monthview"
)

const cellWidth = 7

// Terminal renders month views as coloured grids for a terminal
type Terminal struct {
	locale  calendar.Locale
	title   lipgloss.Style
	header  lipgloss.Style
	blank   lipgloss.Style
	outside lipgloss.Style
	noHours lipgloss.Style
	low     lipgloss.Style
	high    lipgloss.Style
}

// NewTerminal creates a terminal renderer for locale
func NewTerminal(locale calendar.Locale) *Terminal {
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)

	return &Terminal{
		locale:  locale,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f77b4")),
		header:  cell.Bold(true),
		blank:   cell,
		outside: cell.Faint(true),
		noHours: cell.Background(lipgloss.Color("#3a3a3a")).Foreground(lipgloss.Color("#bdbdbd")),
		low:     cell.Background(lipgloss.Color("#2196f3")).Foreground(lipgloss.Color("#ffffff")),
		high:    cell.Background(lipgloss.Color("#4caf50")).Foreground(lipgloss.Color("#ffffff")),
	}
}

func (t *Terminal) styleFor(kind monthview.CellKind) lipgloss.Style {
	switch kind {
	case monthview.CellOutside:
		return t.outside
	case monthview.CellNoHours:
		return t.noHours
	case monthview.CellLow:
		return t.low
	case monthview.CellHigh:
		return t.high
	default:
		return t.blank
	}
}

// RenderMonth draws one month: a title, the weekday header and one row per week.
// In-schedule days show the day number and hours, e.g. "14 4h".
func (t *Terminal) RenderMonth(m monthview.Month) string {
	rows := []string{t.title.Render(m.Label)}

	header := make([]string, 7)
	for i := range header {
		header[i] = t.header.Render(t.locale.WeekdayAbbrev(i))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, week := range m.Weeks {
		cells := make([]string, 7)
		for i, c := range week {
			cells[i] = t.styleFor(c.Kind).Render(cellText(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderView draws every month followed by the legend
func (t *Terminal) RenderView(view monthview.View) string {
	parts := make([]string, 0, len(view)+1)
	for _, m := range view {
		parts = append(parts, t.RenderMonth(m))
	}
	parts = append(parts, t.Legend())
	return strings.Join(parts, "\n\n") + "\n"
}

// Legend explains the cell colours
func (t *Terminal) Legend() string {
	l := legendFor(t.locale)
	swatch := func(s lipgloss.Style, label string) string {
		return s.Width(4).Render("") + " " + label
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		l.Title+":",
		swatch(t.high, l.High),
		swatch(t.low, l.Low),
		swatch(t.noHours, l.NoHours),
	)
}

func cellText(c monthview.Cell) string {
	switch {
	case c.Kind == monthview.CellBlank:
		return ""
	case c.InSchedule() && c.Hours > 0:
		return fmt.Sprintf("%d %s", c.Day, c.HoursLabel)
	default:
		return fmt.Sprintf("%d", c.Day)
	}
}
