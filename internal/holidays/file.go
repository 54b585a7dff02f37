package holidays

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

// FileSource reads holidays from a plain text file.
//
// Format, one holiday per line:
//
//	YYYY-MM-DD [description]
//	# comments and blank lines are ignored
type FileSource struct {
	filePath string
	logger   *zap.Logger
}

// NewFileSource creates a new FileSource
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		filePath: filePath,
		logger:   logger,
	}
}

// Name identifies the source in logs
func (fs *FileSource) Name() string {
	return "file:" + fs.filePath
}

// Holidays loads the file and returns the entries within [from, to]
func (fs *FileSource) Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error) {
	file, err := os.Open(fs.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open holidays file: %w", err)
	}
	defer file.Close()

	var out []store.Holiday
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		dateStr, description, _ := strings.Cut(line, " ")
		date, err := dateutil.ParseDate(dateStr)
		if err != nil {
			fs.logger.Warn("Failed to parse date",
				zap.String("file", fs.filePath),
				zap.Int("line", lineNo),
				zap.String("date", dateStr))
			continue
		}

		if !inRange(date, from, to) {
			continue
		}
		out = append(out, store.Holiday{Date: date, Description: strings.TrimSpace(description)})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holidays file: %w", err)
	}

	fs.logger.Info("Holidays file loaded",
		zap.String("file", fs.filePath),
		zap.Int("holidays", len(out)))

	return dedupe(out), nil
}
