package monthview

import (
	"testing"
	"time"

	"github.com/samber/mo"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/pkg/dateutil"
)

func internshipSchedule(holidays schedule.DateSet, obs map[time.Time]string) *schedule.Schedule {
	return schedule.Compute(schedule.Params{
		Start:      dateutil.Date(2025, 11, 14),
		TotalHours: 240,
		Weekdays:   schedule.WeekdayHours{4, 0, 4, 8, 4, 0, 0},
		Locale:     calendar.LocaleEN,
	}, holidays, obs)
}

func findCell(t *testing.T, m Month, day int) Cell {
	t.Helper()
	for _, week := range m.Weeks {
		for _, c := range week {
			if c.Day == day && c.Kind != CellBlank {
				return c
			}
		}
	}
	t.Fatalf("day %d not found in %s", day, m.Label)
	return Cell{}
}

func TestBuild_MonthRange(t *testing.T) {
	view := Build(internshipSchedule(nil, nil), calendar.LocaleEN)

	want := []string{"November 2025", "December 2025", "January 2026", "February 2026"}
	got := view.Labels()
	if len(got) != len(want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, ok := view.ByLabel()["December 2025"]; !ok {
		t.Error("ByLabel() missing December 2025")
	}
}

func TestBuild_Buckets(t *testing.T) {
	view := Build(internshipSchedule(nil, nil), calendar.LocaleEN)
	nov := view[0]

	tests := []struct {
		day  int
		want CellKind
	}{
		{1, CellOutside},
		{13, CellOutside},
		{14, CellLow},     // Friday, 4h
		{15, CellNoHours}, // Saturday
		{18, CellNoHours}, // Tuesday
		{19, CellLow},     // Wednesday, 4h
		{20, CellHigh},    // Thursday, 8h
	}

	for _, tt := range tests {
		c := findCell(t, nov, tt.day)
		if c.Kind != tt.want {
			t.Errorf("Nov %d kind = %v, want %v", tt.day, c.Kind, tt.want)
		}
	}

	feb := view[3]
	if c := findCell(t, feb, 5); c.Kind != CellHigh {
		t.Errorf("Feb 5 (completion) kind = %v, want high", c.Kind)
	}
	if c := findCell(t, feb, 6); c.Kind != CellOutside {
		t.Errorf("Feb 6 kind = %v, want outside", c.Kind)
	}
}

func TestBuild_PaddingCells(t *testing.T) {
	view := Build(internshipSchedule(nil, nil), calendar.LocaleEN)
	nov := view[0]

	// November 2025 starts on a Saturday
	for col := 0; col < 5; col++ {
		if c := nov.Weeks[0][col]; c.Kind != CellBlank || c.Day != 0 {
			t.Errorf("Weeks[0][%d] = %+v, want blank", col, c)
		}
	}
	if c := nov.Weeks[0][5]; c.Day != 1 {
		t.Errorf("Weeks[0][5].Day = %d, want 1", c.Day)
	}
}

func TestBuild_Tooltips(t *testing.T) {
	holiday := dateutil.Date(2025, 11, 17)
	obs := map[time.Time]string{dateutil.Date(2025, 11, 20): "Sprint review"}
	view := Build(internshipSchedule(schedule.NewDateSet(holiday), obs), calendar.LocaleEN)
	nov := view[0]

	thu := findCell(t, nov, 20)
	if thu.HoursLabel != "8h" {
		t.Errorf("HoursLabel = %q, want 8h", thu.HoursLabel)
	}
	if thu.Tooltip != "Hours: 8h | Sprint review" {
		t.Errorf("Tooltip = %q, want %q", thu.Tooltip, "Hours: 8h | Sprint review")
	}

	wed := findCell(t, nov, 19)
	if wed.Tooltip != "Hours: 4h" {
		t.Errorf("Tooltip = %q, want %q", wed.Tooltip, "Hours: 4h")
	}

	mon := findCell(t, nov, 17)
	if mon.Kind != CellNoHours || !mon.Holiday {
		t.Errorf("holiday cell = %+v, want no-hours holiday", mon)
	}
	if mon.Tooltip != "Hours: 0h | "+schedule.DefaultHolidayNote {
		t.Errorf("holiday Tooltip = %q", mon.Tooltip)
	}
}

func TestBuild_IncompleteScheduleIsEmpty(t *testing.T) {
	s := schedule.Compute(schedule.Params{
		Start:      dateutil.Date(2025, 11, 14),
		TotalHours: 240,
	}, nil, nil)

	if view := Build(s, calendar.LocaleEN); len(view) != 0 {
		t.Errorf("len(Build()) = %d, want 0", len(view))
	}

	empty := &schedule.Schedule{Completion: mo.None[time.Time]()}
	if view := Build(empty, calendar.LocaleEN); view != nil {
		t.Errorf("Build(empty) = %v, want nil", view)
	}
}

func TestBuild_SingleMonth(t *testing.T) {
	s := schedule.Compute(schedule.Params{
		Start:      dateutil.Date(2025, 11, 17),
		TotalHours: 4,
		Weekdays:   schedule.WeekdayHours{8},
	}, nil, nil)

	view := Build(s, calendar.LocalePTBR)
	if len(view) != 1 || view[0].Label != "Novembro 2025" {
		t.Fatalf("Labels() = %v, want [Novembro 2025]", view.Labels())
	}
	if c := findCell(t, view[0], 17); c.Kind != CellLow || c.Hours != 4 {
		t.Errorf("Nov 17 = %v/%v, want low/4", c.Kind, c.Hours)
	}
}

func TestBuild_TooltipFollowsLocale(t *testing.T) {
	holiday := dateutil.Date(2025, 11, 17)
	obs := map[time.Time]string{dateutil.Date(2025, 11, 20): "Reunião"}
	s := internshipSchedule(schedule.NewDateSet(holiday), obs)

	tests := []struct {
		locale calendar.Locale
		thu    string
		wed    string
	}{
		{calendar.LocaleEN, "Hours: 8h | Reunião", "Hours: 4h"},
		{calendar.LocalePTBR, "Horas: 8h | Reunião", "Horas: 4h"},
		{calendar.Locale("de"), "Hours: 8h | Reunião", "Hours: 4h"},
	}

	for _, tt := range tests {
		t.Run(string(tt.locale), func(t *testing.T) {
			nov := Build(s, tt.locale)[0]
			if got := findCell(t, nov, 20).Tooltip; got != tt.thu {
				t.Errorf("Tooltip = %q, want %q", got, tt.thu)
			}
			if got := findCell(t, nov, 19).Tooltip; got != tt.wed {
				t.Errorf("Tooltip = %q, want %q", got, tt.wed)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		hours float64
		want  CellKind
	}{
		{0, CellNoHours},
		{0.5, CellLow},
		{4, CellLow},
		{4.5, CellHigh},
		{8, CellHigh},
	}
	for _, tt := range tests {
		if got := Classify(tt.hours); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}
