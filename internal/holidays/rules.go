package holidays

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// Rule is a recurring holiday expressed as an RFC 5545 RRULE,
// e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"
type Rule struct {
	RRule       string
	Description string
	// Start anchors the recurrence; zero means the start of the requested range
	Start time.Time
}

// RuleSource expands recurrence rules into holiday dates
type RuleSource struct {
	rules  []Rule
	logger *zap.Logger
}

// NewRuleSource creates a RuleSource over rules
func NewRuleSource(rules []Rule, logger *zap.Logger) *RuleSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleSource{rules: rules, logger: logger}
}

// Name identifies the source in logs
func (s *RuleSource) Name() string {
	return "rules"
}

// Len returns the number of configured rules
func (s *RuleSource) Len() int {
	return len(s.rules)
}

// Validate parses every rule and reports the first invalid one
func (s *RuleSource) Validate() error {
	for i, r := range s.rules {
		if _, err := expand(r, dateutil.Date(2000, 1, 1)); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// Holidays returns every occurrence within [from, to]. Invalid rules are
// skipped with a warning.
func (s *RuleSource) Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error) {
	from, to = dateutil.StartOfDay(from), dateutil.StartOfDay(to)

	var out []store.Holiday
	for _, r := range s.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := expand(r, from)
		if err != nil {
			s.logger.Warn("Skipping invalid holiday rule",
				zap.String("rule", r.RRule),
				zap.Error(err))
			continue
		}

		for _, occurrence := range set.Between(from, to, true) {
			out = append(out, store.Holiday{
				Date:        dateutil.StartOfDay(occurrence),
				Description: r.Description,
			})
		}
	}

	return dedupe(out), nil
}

func expand(r Rule, anchor time.Time) (*rrule.Set, error) {
	body := strings.TrimSpace(r.RRule)
	body = strings.TrimPrefix(body, "RRULE:")
	if body == "" {
		return nil, fmt.Errorf("empty rule")
	}

	if !r.Start.IsZero() {
		anchor = r.Start
	}
	dtstart := dateutil.StartOfDay(anchor).Format("20060102T150405Z")

	set, err := rrule.StrToRRuleSet(fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart, body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule %q: %w", r.RRule, err)
	}
	return set, nil
}
