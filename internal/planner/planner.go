// Package planner owns the session state of the internship planner: the fixed
// schedule parameters, the holiday set and the observations. It recomputes
// the schedule from scratch on every request and writes edits back to the store.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/holidays"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// ErrPersist wraps store save failures. The in-memory state keeps the change.
var ErrPersist = errors.New("failed to persist changes")

// initialRuleHorizon is the first window of recurring holidays merged into a computation
const initialRuleHorizon = 366

// Planner manages schedule computation and holiday/observation edits
type Planner struct {
	params schedule.Params
	store  store.Store
	rules  holidays.Source
	logger *zap.Logger

	mu           sync.RWMutex
	holidays     store.HolidaySet
	observations store.Observations
}

// New creates a planner. rules may be nil; when set, its holidays are merged
// into every computation without being persisted.
func New(params schedule.Params, st store.Store, rules holidays.Source, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		params:       params,
		store:        st,
		rules:        rules,
		logger:       logger,
		holidays:     make(store.HolidaySet),
		observations: make(store.Observations),
	}
}

// Params returns the fixed schedule parameters
func (p *Planner) Params() schedule.Params {
	return p.params
}

// Load reads holidays and observations from the store. A failed load is
// logged and leaves that collection empty; it never blocks computation.
func (p *Planner) Load(ctx context.Context) {
	hs, err := p.store.LoadHolidays(ctx)
	if err != nil {
		p.logger.Warn("Failed to load holidays, continuing with none", zap.Error(err))
		hs = make(store.HolidaySet)
	}

	obs, err := p.store.LoadObservations(ctx)
	if err != nil {
		p.logger.Warn("Failed to load observations, continuing with none", zap.Error(err))
		obs = make(store.Observations)
	}

	p.mu.Lock()
	p.holidays = hs
	p.observations = obs
	p.mu.Unlock()

	p.logger.Info("Planner state loaded",
		zap.Int("holidays", len(hs)),
		zap.Int("observations", len(obs)))
}

// Holidays returns a copy of the current holiday set
func (p *Planner) Holidays() store.HolidaySet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.holidays.Clone()
}

// Observations returns a copy of the current observations
func (p *Planner) Observations() store.Observations {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.observations.Clone()
}

// Schedule computes the ledger from the current snapshot. A failing holiday
// source is logged and the computation continues with the stored holidays.
func (p *Planner) Schedule(ctx context.Context) (*schedule.Schedule, error) {
	if err := p.params.Validate(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	hs := p.holidays.Clone()
	obs := p.observations.Clone()
	p.mu.RUnlock()

	sched := p.compute(ctx, hs, obs)
	if sched.Truncated {
		p.logger.Warn("Target not reached within the day bound",
			zap.String("target", schedule.FormatHours(sched.Target)),
			zap.String("accumulated", schedule.FormatHours(sched.Accumulated())),
			zap.Int("days", len(sched.Entries)))
	}
	return sched, nil
}

func (p *Planner) compute(ctx context.Context, hs store.HolidaySet, obs store.Observations) *schedule.Schedule {
	if p.rules == nil {
		return schedule.Compute(p.params, schedule.NewDateSet(hs.Dates()...), obs)
	}

	// Recurring holidays are expanded over a window that doubles until it
	// covers the completion date or reaches the day cap
	maxDays := p.params.MaxDays
	if maxDays <= 0 {
		maxDays = schedule.DefaultMaxDays
	}
	start := dateutil.StartOfDay(p.params.Start)

	for horizon := initialRuleHorizon; ; horizon *= 2 {
		horizon = min(horizon, maxDays)
		end := start.AddDate(0, 0, horizon)

		ruleHolidays, err := p.rules.Holidays(ctx, start, end)
		if err != nil {
			p.logger.Warn("Failed to load holiday source, continuing with stored holidays",
				zap.String("source", p.rules.Name()),
				zap.Error(err))
			return schedule.Compute(p.params, schedule.NewDateSet(hs.Dates()...), obs)
		}

		merged := hs.Clone()
		for _, h := range ruleHolidays {
			merged.Add(h)
		}

		sched := schedule.Compute(p.params, schedule.NewDateSet(merged.Dates()...), obs)
		if done, ok := sched.Completion.Get(); ok && !done.After(end) {
			return sched
		}
		if horizon >= maxDays {
			return sched
		}
	}
}

// Summary computes the schedule and its headline figures
func (p *Planner) Summary(ctx context.Context) (schedule.Summary, *schedule.Schedule, error) {
	sched, err := p.Schedule(ctx)
	if err != nil {
		return schedule.Summary{}, nil, err
	}
	return schedule.Summarize(sched, p.params.Weekdays), sched, nil
}

// AddHoliday records a holiday. Adding an existing date is a no-op and
// reports false.
func (p *Planner) AddHoliday(ctx context.Context, date time.Time, description string) (bool, error) {
	p.mu.Lock()
	added := p.holidays.Add(store.Holiday{Date: date, Description: description})
	snapshot := p.holidays.Clone()
	p.mu.Unlock()

	if !added {
		p.logger.Debug("Holiday already present", zap.String("date", dateutil.FormatISO(date)))
		return false, nil
	}

	p.logger.Info("Holiday added",
		zap.String("date", dateutil.FormatISO(date)),
		zap.String("description", description))

	if err := p.store.SaveHolidays(ctx, snapshot); err != nil {
		return true, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return true, nil
}

// RemoveHolidays deletes the given dates from the holiday set. For each
// removed date an observation equal to the default holiday note is deleted
// too; any other observation text is kept.
func (p *Planner) RemoveHolidays(ctx context.Context, dates ...time.Time) (int, error) {
	note := p.holidayNote()

	p.mu.Lock()
	removed := 0
	obsChanged := false
	for _, date := range dates {
		date = dateutil.StartOfDay(date)
		if !p.holidays.Remove(date) {
			continue
		}
		removed++
		if p.observations[date] == note {
			delete(p.observations, date)
			obsChanged = true
		}
	}
	hs := p.holidays.Clone()
	obs := p.observations.Clone()
	p.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}

	p.logger.Info("Holidays removed", zap.Int("count", removed))

	var errs []error
	if err := p.store.SaveHolidays(ctx, hs); err != nil {
		errs = append(errs, err)
	}
	if obsChanged {
		if err := p.store.SaveObservations(ctx, obs); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("%w: %w", ErrPersist, errors.Join(errs...))
	}
	return removed, nil
}

// ApplyObservationEdits merges edited observation text per date. Text is
// trimmed and blank text clears the note. The store is written only when the
// result differs from the current observations.
func (p *Planner) ApplyObservationEdits(ctx context.Context, edits map[time.Time]string) (bool, error) {
	p.mu.Lock()
	next := p.observations.Clone()
	for date, text := range edits {
		next.Set(date, text)
	}
	if next.Equal(p.observations) {
		p.mu.Unlock()
		return false, nil
	}
	p.observations = next
	snapshot := next.Clone()
	p.mu.Unlock()

	p.logger.Info("Observations updated",
		zap.Int("edits", len(edits)),
		zap.Int("observations", len(snapshot)))

	if err := p.store.SaveObservations(ctx, snapshot); err != nil {
		return true, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return true, nil
}

// ImportHolidays merges the holidays src reports within [from, to] into the
// set and persists them. Dates already present keep their description.
func (p *Planner) ImportHolidays(ctx context.Context, src holidays.Source, from, to time.Time) (int, error) {
	incoming, err := src.Holidays(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to import holidays from %s: %w", src.Name(), err)
	}

	p.mu.Lock()
	added := 0
	for _, h := range incoming {
		if p.holidays.Add(h) {
			added++
		}
	}
	snapshot := p.holidays.Clone()
	p.mu.Unlock()

	p.logger.Info("Holidays imported",
		zap.String("source", src.Name()),
		zap.Int("received", len(incoming)),
		zap.Int("added", added))

	if added == 0 {
		return 0, nil
	}
	if err := p.store.SaveHolidays(ctx, snapshot); err != nil {
		return added, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return added, nil
}

func (p *Planner) holidayNote() string {
	if p.params.HolidayNote != "" {
		return p.params.HolidayNote
	}
	return schedule.DefaultHolidayNote
}
