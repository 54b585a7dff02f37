package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/username/internship-planner/pkg/dateutil"
)

// State is the on-disk document of the state driver
type State struct {
	Holidays     []StateHoliday    `json:"holidays" yaml:"holidays"`
	Observations map[string]string `json:"observations" yaml:"observations"` // ISO date -> text
	UpdatedAt    string            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// StateHoliday is one holiday record in the state document
type StateHoliday struct {
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// StateStore keeps both collections in a single JSON or YAML file.
// Files ending in .yaml or .yml are YAML; everything else is JSON.
type StateStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStateStore creates a state file store
func NewStateStore(path string, logger *zap.Logger) *StateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateStore{path: path, logger: logger}
}

func (s *StateStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// load reads the state file; a missing file is an empty state
func (s *StateStore) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{Observations: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if s.isYAML() {
		err = yaml.Unmarshal(data, &state)
	} else {
		err = json.Unmarshal(data, &state)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Observations == nil {
		state.Observations = make(map[string]string)
	}

	return &state, nil
}

func (s *StateStore) save(state *State) error {
	state.UpdatedAt = time.Now().Format(time.RFC3339)

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(state)
	} else {
		data, err = json.MarshalIndent(state, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// LoadHolidays returns the holidays recorded in the state file
func (s *StateStore) LoadHolidays(ctx context.Context) (HolidaySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}

	set := make(HolidaySet, len(state.Holidays))
	for _, h := range state.Holidays {
		date, err := dateutil.ParseDate(h.Date)
		if err != nil {
			s.logger.Warn("Skipping holiday with invalid date",
				zap.String("file", s.path),
				zap.String("date", h.Date))
			continue
		}
		set.Add(Holiday{Date: date, Description: h.Description})
	}

	return set, nil
}

// SaveHolidays replaces the holidays in the state file, keeping observations
func (s *StateStore) SaveHolidays(ctx context.Context, holidays HolidaySet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	state.Holidays = make([]StateHoliday, 0, len(holidays))
	for _, h := range holidays.List() {
		state.Holidays = append(state.Holidays, StateHoliday{
			Date:        dateutil.FormatISO(h.Date),
			Description: h.Description,
		})
	}

	if err := s.save(state); err != nil {
		return err
	}

	s.logger.Debug("Holidays saved",
		zap.String("file", s.path),
		zap.Int("count", len(state.Holidays)))

	return nil
}

// LoadObservations returns the observations recorded in the state file
func (s *StateStore) LoadObservations(ctx context.Context) (Observations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}

	obs := make(Observations, len(state.Observations))
	for key, text := range state.Observations {
		date, err := dateutil.ParseDate(key)
		if err != nil {
			s.logger.Warn("Skipping observation with invalid date",
				zap.String("file", s.path),
				zap.String("date", key))
			continue
		}
		obs.Set(date, text)
	}

	return obs, nil
}

// SaveObservations replaces the observations in the state file, keeping holidays
func (s *StateStore) SaveObservations(ctx context.Context, observations Observations) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	state.Observations = make(map[string]string, len(observations))
	for date, text := range observations {
		if text = strings.TrimSpace(text); text != "" {
			state.Observations[dateutil.FormatISO(date)] = text
		}
	}

	if err := s.save(state); err != nil {
		return err
	}

	s.logger.Debug("Observations saved",
		zap.String("file", s.path),
		zap.Int("count", len(state.Observations)))

	return nil
}

// Paths returns the state file
func (s *StateStore) Paths() []string {
	return []string{s.path}
}

// Close is a no-op
func (s *StateStore) Close() error {
	return nil
}
