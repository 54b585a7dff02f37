package holidays

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// maxEventDays bounds how many days one multi-day event may expand to
const maxEventDays = 366

// ICSSource reads holidays from the VEVENTs of an iCalendar file.
// Each event marks every calendar day it covers; SUMMARY becomes the description.
type ICSSource struct {
	filePath string
	logger   *zap.Logger
}

// NewICSSource creates a new ICSSource
func NewICSSource(filePath string, logger *zap.Logger) *ICSSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ICSSource{filePath: filePath, logger: logger}
}

// Name identifies the source in logs
func (s *ICSSource) Name() string {
	return "ics:" + s.filePath
}

// Holidays decodes the file and returns the covered days within [from, to]
func (s *ICSSource) Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	out, err := DecodeICS(ctx, file, from, to, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.filePath, err)
	}

	s.logger.Info("Calendar file loaded",
		zap.String("file", s.filePath),
		zap.Int("holidays", len(out)))

	return out, nil
}

// DecodeICS extracts holiday days from an iCalendar stream. Events without a
// usable DTSTART are skipped with a warning.
func DecodeICS(ctx context.Context, r io.Reader, from, to time.Time, logger *zap.Logger) ([]store.Holiday, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var out []store.Holiday
	for _, event := range cal.Events() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary := ""
		if prop := event.Props.Get(ical.PropSummary); prop != nil {
			summary = strings.TrimSpace(prop.Value)
		}

		start, err := event.DateTimeStart(time.UTC)
		if err != nil || start.IsZero() {
			logger.Warn("Skipping event without start date",
				zap.String("summary", summary),
				zap.Error(err))
			continue
		}
		start = dateutil.StartOfDay(start)

		// DTEND is exclusive; a missing or degenerate end covers only the start day
		days := 1
		if end, err := event.DateTimeEnd(time.UTC); err == nil && !end.IsZero() {
			if n := dateutil.DaysBetween(start, end); n > 1 {
				days = min(n, maxEventDays)
			}
		}

		for i := 0; i < days; i++ {
			date := start.AddDate(0, 0, i)
			if inRange(date, from, to) {
				out = append(out, store.Holiday{Date: date, Description: summary})
			}
		}
	}

	return dedupe(out), nil
}
