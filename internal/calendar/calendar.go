// Package calendar holds the locale tables and month layout used by the
// schedule ledger and the month views.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/internship-planner/pkg/dateutil"
)

// Locale selects the naming tables for weekdays and months
type Locale string

const (
	LocaleEN   Locale = "en"
	LocalePTBR Locale = "pt-BR"
)

// Weekday names indexed Monday=0 .. Sunday=6
var weekdayNames = map[Locale][7]string{
	LocaleEN:   {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	LocalePTBR: {"Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado", "Domingo"},
}

var weekdayAbbrev = map[Locale][7]string{
	LocaleEN:   {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	LocalePTBR: {"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"},
}

var monthNames = map[Locale][12]string{
	LocaleEN: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	LocalePTBR: {"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"},
}

// ParseLocale maps a config value to a Locale.
// Empty selects English.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "en-us", "en-gb":
		return LocaleEN, nil
	case "pt", "pt-br", "pt_br":
		return LocalePTBR, nil
	default:
		return "", fmt.Errorf("unsupported locale %q", s)
	}
}

func (l Locale) tables() Locale {
	if _, ok := weekdayNames[l]; ok {
		return l
	}
	return LocaleEN
}

// WeekdayIndex converts a date to the Monday=0 .. Sunday=6 index
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayName returns the full weekday name for a Monday-based index
func (l Locale) WeekdayName(idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	return weekdayNames[l.tables()][idx]
}

// WeekdayAbbrev returns the short weekday name used in grid headers
func (l Locale) WeekdayAbbrev(idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	return weekdayAbbrev[l.tables()][idx]
}

// MonthName returns the month name
func (l Locale) MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return monthNames[l.tables()][month-1]
}

// MonthLabel returns the "Month Year" label for a month
func (l Locale) MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", l.MonthName(month), year)
}

// MonthGrid lays out a month as Monday-first weeks.
// Days outside the month are 0.
func MonthGrid(year int, month time.Month) [][7]int {
	first := dateutil.Date(year, month, 1)
	daysInMonth := dateutil.DaysIn(year, month)

	var weeks [][7]int
	var week [7]int
	col := WeekdayIndex(first)

	for day := 1; day <= daysInMonth; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}

	return weeks
}
