package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.FixedZone("BRT", -3*60*60))
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestMonthHelpers(t *testing.T) {
	d := Date(2025, 12, 17)

	if got := StartOfMonth(d); !got.Equal(Date(2025, 12, 1)) {
		t.Errorf("StartOfMonth = %v, want 2025-12-01", got)
	}
	if got := NextMonth(d); !got.Equal(Date(2026, 1, 1)) {
		t.Errorf("NextMonth = %v, want 2026-01-01", got)
	}
	if got := DaysIn(2024, time.February); got != 29 {
		t.Errorf("DaysIn(2024, Feb) = %d, want 29", got)
	}
	if got := DaysIn(2025, time.November); got != 30 {
		t.Errorf("DaysIn(2025, Nov) = %d, want 30", got)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", Date(2025, 11, 14), Date(2025, 11, 14), 0},
		{"across month", Date(2025, 11, 14), Date(2025, 12, 2), 18},
		{"backwards", Date(2025, 11, 14), Date(2025, 11, 10), -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"ISO format YYYY-MM-DD", "2025-01-15", Date(2025, 1, 15), false},
		{"Brazilian format DD/MM/YYYY", "15/01/2025", Date(2025, 1, 15), false},
		{"Dotted format DD.MM.YYYY", "15.01.2025", Date(2025, 1, 15), false},
		{"ISO with time", "2025-01-15T10:30:00", Date(2025, 1, 15), false},
		{"Surrounding spaces", "  2025-11-14 ", Date(2025, 11, 14), false},
		{"Empty string", "", time.Time{}, true},
		{"Garbage", "not-a-date", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}
