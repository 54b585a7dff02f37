package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/username/internship-planner/pkg/dateutil"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// SQLiteStore keeps holidays and observations in a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// LoadHolidays reads every holiday row
func (s *SQLiteStore) LoadHolidays(ctx context.Context) (HolidaySet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, description FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	set := make(HolidaySet)
	for rows.Next() {
		var raw, description string
		if err := rows.Scan(&raw, &description); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		date, err := dateutil.ParseDate(raw)
		if err != nil {
			s.logger.Warn("Skipping holiday with invalid date", zap.String("date", raw))
			continue
		}
		set.Add(Holiday{Date: date, Description: description})
	}

	return set, rows.Err()
}

// SaveHolidays replaces the holidays table contents
func (s *SQLiteStore) SaveHolidays(ctx context.Context, holidays HolidaySet) error {
	return s.replace(ctx, "holidays", func(tx *sql.Tx) error {
		for _, h := range holidays.List() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO holidays(date, description) VALUES(?, ?)
				 ON CONFLICT(date) DO UPDATE SET description = excluded.description`,
				dateutil.FormatISO(h.Date), h.Description,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadObservations reads every observation row
func (s *SQLiteStore) LoadObservations(ctx context.Context) (Observations, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, text FROM observations ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	obs := make(Observations)
	for rows.Next() {
		var raw, text string
		if err := rows.Scan(&raw, &text); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		date, err := dateutil.ParseDate(raw)
		if err != nil {
			s.logger.Warn("Skipping observation with invalid date", zap.String("date", raw))
			continue
		}
		obs.Set(date, text)
	}

	return obs, rows.Err()
}

// SaveObservations replaces the observations table contents, skipping empty notes
func (s *SQLiteStore) SaveObservations(ctx context.Context, observations Observations) error {
	return s.replace(ctx, "observations", func(tx *sql.Tx) error {
		for _, date := range observations.Dates() {
			text := strings.TrimSpace(observations[date])
			if text == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO observations(date, text) VALUES(?, ?)
				 ON CONFLICT(date) DO UPDATE SET text = excluded.text`,
				dateutil.FormatISO(date), text,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// replace clears table and refills it inside one transaction
func (s *SQLiteStore) replace(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to write %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// Paths returns the database file and its write-ahead log, where commits
// land until a checkpoint
func (s *SQLiteStore) Paths() []string {
	return []string{s.path, s.path + "-wal"}
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
