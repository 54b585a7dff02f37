package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/username/internship-planner/internal/holidays"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// memoryStore is an in-memory store.Store with injectable failures
type memoryStore struct {
	holidays     store.HolidaySet
	observations store.Observations
	loadErr      error
	saveErr      error
	holidaySaves int
	obsSaves     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{holidays: store.HolidaySet{}, observations: store.Observations{}}
}

func (m *memoryStore) LoadHolidays(context.Context) (store.HolidaySet, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.holidays.Clone(), nil
}

func (m *memoryStore) SaveHolidays(_ context.Context, h store.HolidaySet) error {
	m.holidaySaves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.holidays = h.Clone()
	return nil
}

func (m *memoryStore) LoadObservations(context.Context) (store.Observations, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.observations.Clone(), nil
}

func (m *memoryStore) SaveObservations(_ context.Context, o store.Observations) error {
	m.obsSaves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.observations = o.Clone()
	return nil
}

func (m *memoryStore) Paths() []string { return nil }
func (m *memoryStore) Close() error    { return nil }

func defaultParams() schedule.Params {
	return schedule.Params{
		Start:      dateutil.Date(2025, 11, 14),
		TotalHours: 240,
		Weekdays:   schedule.WeekdayHours{4, 0, 4, 8, 4, 0, 0},
	}
}

func completion(t *testing.T, s *schedule.Schedule) time.Time {
	t.Helper()
	end, ok := s.Completion.Get()
	require.True(t, ok, "schedule should complete")
	return end
}

func TestPlanner_ScheduleFollowsHolidayEdits(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	p := New(defaultParams(), st, nil, zap.NewNop())
	p.Load(ctx)

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2026, 2, 5), completion(t, sched))

	added, err := p.AddHoliday(ctx, dateutil.Date(2025, 11, 17), "Bridge day")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, st.holidays.Contains(dateutil.Date(2025, 11, 17)))

	sched, err = p.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2026, 2, 6), completion(t, sched))

	entry, ok := sched.Lookup(dateutil.Date(2025, 11, 17))
	require.True(t, ok)
	assert.Equal(t, schedule.DefaultHolidayNote, entry.Observation)

	// Second add is a no-op and does not write
	added, err = p.AddHoliday(ctx, dateutil.Date(2025, 11, 17), "Other")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, st.holidaySaves)
}

func TestPlanner_RemoveHolidaysKeepsUserNotes(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	marker := dateutil.Date(2025, 11, 17)
	custom := dateutil.Date(2025, 11, 19)
	st.holidays = store.NewHolidaySet(store.Holiday{Date: marker}, store.Holiday{Date: custom})
	st.observations = store.Observations{
		marker: schedule.DefaultHolidayNote,
		custom: "Dentist",
	}

	p := New(defaultParams(), st, nil, nil)
	p.Load(ctx)

	removed, err := p.RemoveHolidays(ctx, marker, custom, dateutil.Date(2030, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.Empty(t, st.holidays)
	assert.Equal(t, store.Observations{custom: "Dentist"}, st.observations)
}

func TestPlanner_RemoveAbsentHolidayIsNoop(t *testing.T) {
	st := newMemoryStore()
	p := New(defaultParams(), st, nil, nil)

	removed, err := p.RemoveHolidays(context.Background(), dateutil.Date(2025, 12, 25))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 0, st.holidaySaves)
}

func TestPlanner_ApplyObservationEdits(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	st.observations = store.Observations{dateutil.Date(2025, 11, 14): "Kickoff"}
	p := New(defaultParams(), st, nil, nil)
	p.Load(ctx)

	// Same text after trimming: nothing to save
	changed, err := p.ApplyObservationEdits(ctx, map[time.Time]string{
		dateutil.Date(2025, 11, 14): "  Kickoff ",
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, st.obsSaves)

	changed, err = p.ApplyObservationEdits(ctx, map[time.Time]string{
		dateutil.Date(2025, 11, 14): "",
		dateutil.Date(2025, 11, 20): "Sprint review",
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, st.obsSaves)
	assert.Equal(t, store.Observations{dateutil.Date(2025, 11, 20): "Sprint review"}, st.observations)

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	entry, _ := sched.Lookup(dateutil.Date(2025, 11, 20))
	assert.Equal(t, "Sprint review", entry.Observation)
}

func TestPlanner_LoadFailureDegradesToEmpty(t *testing.T) {
	st := newMemoryStore()
	st.holidays = store.NewHolidaySet(store.Holiday{Date: dateutil.Date(2025, 11, 17)})
	st.loadErr = errors.New("disk on fire")

	p := New(defaultParams(), st, nil, nil)
	p.Load(context.Background())

	assert.Empty(t, p.Holidays())
	sched, err := p.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2026, 2, 5), completion(t, sched))
}

func TestPlanner_SaveFailureKeepsSessionState(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	st.saveErr = errors.New("read-only filesystem")
	p := New(defaultParams(), st, nil, nil)

	added, err := p.AddHoliday(ctx, dateutil.Date(2025, 11, 17), "")
	assert.True(t, added)
	assert.ErrorIs(t, err, ErrPersist)
	assert.True(t, p.Holidays().Contains(dateutil.Date(2025, 11, 17)))

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2026, 2, 6), completion(t, sched))
}

func TestPlanner_InvalidParams(t *testing.T) {
	params := defaultParams()
	params.TotalHours = 0
	p := New(params, newMemoryStore(), nil, nil)

	_, err := p.Schedule(context.Background())
	assert.ErrorIs(t, err, schedule.ErrInvalidParams)
}

func TestPlanner_RuleHolidaysAreMergedNotPersisted(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	rules := holidays.NewRuleSource([]holidays.Rule{
		{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Description: "Christmas"},
	}, nil)
	p := New(defaultParams(), st, rules, nil)
	p.Load(ctx)

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	// Christmas 2025 is a Thursday: 8 hours move past the rule-free completion
	assert.Equal(t, dateutil.Date(2026, 2, 9), completion(t, sched))

	entry, _ := sched.Lookup(dateutil.Date(2025, 12, 25))
	assert.True(t, entry.Holiday)
	assert.Empty(t, st.holidays)
}

type fixedSource []store.Holiday

func (f fixedSource) Name() string { return "fixed" }

func (f fixedSource) Holidays(context.Context, time.Time, time.Time) ([]store.Holiday, error) {
	return f, nil
}

func TestPlanner_ImportHolidays(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	st.holidays = store.NewHolidaySet(store.Holiday{Date: dateutil.Date(2025, 12, 25), Description: "Natal"})
	p := New(defaultParams(), st, nil, nil)
	p.Load(ctx)

	src := fixedSource{
		{Date: dateutil.Date(2025, 12, 25), Description: "Christmas"},
		{Date: dateutil.Date(2026, 1, 1), Description: "New Year"},
	}
	from, to := holidays.YearRange(2025)
	added, err := p.ImportHolidays(ctx, src, from, to.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "Natal", st.holidays[dateutil.Date(2025, 12, 25)].Description)
	assert.Len(t, st.holidays, 2)
}

func TestPlanner_MissingHolidayFileFallsBackToStored(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	st.holidays = store.NewHolidaySet(store.Holiday{Date: dateutil.Date(2025, 11, 17)})

	core, logs := observer.New(zapcore.WarnLevel)
	missing := holidays.NewFileSource(filepath.Join(t.TempDir(), "holidays.txt"), nil)
	p := New(defaultParams(), st, missing, zap.New(core))
	p.Load(ctx)

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	// Stored Monday holiday still applies
	assert.Equal(t, dateutil.Date(2026, 2, 6), completion(t, sched))

	warnings := logs.FilterMessage("Failed to load holiday source, continuing with stored holidays")
	assert.Equal(t, 1, warnings.Len())
}

func TestPlanner_FailingSourceInsideComposite(t *testing.T) {
	ctx := context.Background()
	src := holidays.NewCompositeSource(nil,
		holidays.NewFileSource(filepath.Join(t.TempDir(), "missing.txt"), nil),
		fixedSource{{Date: dateutil.Date(2025, 11, 17), Description: "Bridge day"}},
	)
	p := New(defaultParams(), newMemoryStore(), src, nil)

	sched, err := p.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2026, 2, 6), completion(t, sched))
}

func TestPlanner_WarnsWhenTargetUnreachable(t *testing.T) {
	params := defaultParams()
	params.Weekdays = schedule.WeekdayHours{}

	core, logs := observer.New(zapcore.WarnLevel)
	p := New(params, newMemoryStore(), nil, zap.New(core))

	sched, err := p.Schedule(context.Background())
	require.NoError(t, err)
	assert.True(t, sched.Truncated)
	assert.False(t, sched.Complete())

	entries := logs.FilterMessage("Target not reached within the day bound").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "240", entries[0].ContextMap()["target"])
}
