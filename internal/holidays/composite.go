package holidays

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
)

// CompositeSource merges several sources. A failing source is logged and
// skipped; the call fails only when every source fails.
type CompositeSource struct {
	sources []Source
	logger  *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(logger *zap.Logger, sources ...Source) *CompositeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompositeSource{sources: sources, logger: logger}
}

// Name lists the member sources
func (cs *CompositeSource) Name() string {
	names := make([]string, len(cs.sources))
	for i, s := range cs.sources {
		names[i] = s.Name()
	}
	return "composite(" + strings.Join(names, ",") + ")"
}

// Holidays returns the union of every source's holidays. On duplicate dates
// the earlier source's description wins.
func (cs *CompositeSource) Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error) {
	if len(cs.sources) == 0 {
		return nil, nil
	}

	var (
		out  []store.Holiday
		errs []error
	)
	for _, src := range cs.sources {
		holidays, err := src.Holidays(ctx, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cs.logger.Warn("Holiday source failed, skipping",
				zap.String("source", src.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		out = append(out, holidays...)
	}

	if len(errs) == len(cs.sources) {
		return nil, fmt.Errorf("all holiday sources failed: %w", errors.Join(errs...))
	}

	return dedupe(out), nil
}
