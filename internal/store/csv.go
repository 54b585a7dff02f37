package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/pkg/dateutil"
)

// Column names written to the CSV files. Loading also accepts the aliases below.
const (
	columnDate        = "date"
	columnDescription = "description"
	columnObservation = "observation"
)

var columnAliases = map[string]string{
	"data":       columnDate,
	"descricao":  columnDescription,
	"descrição":  columnDescription,
	"observacao": columnObservation,
	"observação": columnObservation,
	"note":       columnObservation,
}

// CSVStore keeps holidays and observations in two CSV files
type CSVStore struct {
	holidaysFile     string
	observationsFile string
	logger           *zap.Logger
}

// NewCSVStore creates a CSV backed store. Missing files read as empty.
func NewCSVStore(holidaysFile, observationsFile string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{
		holidaysFile:     holidaysFile,
		observationsFile: observationsFile,
		logger:           logger,
	}
}

// LoadHolidays reads the holidays file
func (s *CSVStore) LoadHolidays(ctx context.Context) (HolidaySet, error) {
	set := make(HolidaySet)
	err := s.readRows(ctx, s.holidaysFile, columnDescription, func(date time.Time, text string) {
		set.Add(Holiday{Date: date, Description: text})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Holidays loaded",
		zap.String("file", s.holidaysFile),
		zap.Int("count", len(set)))

	return set, nil
}

// SaveHolidays rewrites the holidays file
func (s *CSVStore) SaveHolidays(ctx context.Context, holidays HolidaySet) error {
	rows := make([][]string, 0, len(holidays))
	for _, h := range holidays.List() {
		rows = append(rows, []string{dateutil.FormatISO(h.Date), h.Description})
	}

	if err := writeCSV(ctx, s.holidaysFile, []string{columnDate, columnDescription}, rows); err != nil {
		return fmt.Errorf("failed to save holidays: %w", err)
	}

	s.logger.Debug("Holidays saved",
		zap.String("file", s.holidaysFile),
		zap.Int("count", len(rows)))

	return nil
}

// LoadObservations reads the observations file. Rows with empty text are dropped.
func (s *CSVStore) LoadObservations(ctx context.Context) (Observations, error) {
	obs := make(Observations)
	err := s.readRows(ctx, s.observationsFile, columnObservation, func(date time.Time, text string) {
		obs.Set(date, text)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Observations loaded",
		zap.String("file", s.observationsFile),
		zap.Int("count", len(obs)))

	return obs, nil
}

// SaveObservations rewrites the observations file, skipping empty notes
func (s *CSVStore) SaveObservations(ctx context.Context, observations Observations) error {
	rows := make([][]string, 0, len(observations))
	for _, date := range observations.Dates() {
		text := strings.TrimSpace(observations[date])
		if text == "" {
			continue
		}
		rows = append(rows, []string{dateutil.FormatISO(date), text})
	}

	if err := writeCSV(ctx, s.observationsFile, []string{columnDate, columnObservation}, rows); err != nil {
		return fmt.Errorf("failed to save observations: %w", err)
	}

	s.logger.Debug("Observations saved",
		zap.String("file", s.observationsFile),
		zap.Int("count", len(rows)))

	return nil
}

// Paths returns both CSV files
func (s *CSVStore) Paths() []string {
	return []string{s.holidaysFile, s.observationsFile}
}

// Close is a no-op
func (s *CSVStore) Close() error {
	return nil
}

// readRows streams (date, text) pairs out of path. Rows with an unparseable
// date are skipped with a warning; a missing file yields no rows.
func (s *CSVStore) readRows(ctx context.Context, path, textColumn string, fn func(time.Time, string)) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	dateIdx, textIdx := headerIndex(header, textColumn)
	if dateIdx < 0 {
		return fmt.Errorf("file %s has no %q column", path, columnDate)
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.logger.Warn("Skipping malformed row",
					zap.String("file", path),
					zap.Int("line", line),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if dateIdx >= len(record) || strings.TrimSpace(record[dateIdx]) == "" {
			continue
		}

		date, err := dateutil.ParseDate(record[dateIdx])
		if err != nil {
			s.logger.Warn("Skipping row with invalid date",
				zap.String("file", path),
				zap.Int("line", line),
				zap.String("date", record[dateIdx]))
			continue
		}

		text := ""
		if textIdx >= 0 && textIdx < len(record) {
			text = strings.TrimSpace(record[textIdx])
		}
		fn(date, text)
	}

	return nil
}

func headerIndex(header []string, textColumn string) (dateIdx, textIdx int) {
	dateIdx, textIdx = -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		switch name {
		case columnDate:
			if dateIdx < 0 {
				dateIdx = i
			}
		case textColumn:
			if textIdx < 0 {
				textIdx = i
			}
		}
	}
	return dateIdx, textIdx
}

// writeCSV writes header and rows to a temporary file and renames it over path
func writeCSV(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
