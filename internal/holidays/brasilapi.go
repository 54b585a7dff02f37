package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

const (
	DefaultBrasilAPIURL = "https://brasilapi.com.br"
	defaultHTTPTimeout  = 10 * time.Second
	defaultCacheTTL     = 24 * time.Hour
)

// BrasilAPISource fetches national holidays from BrasilAPI, one request per
// year, caching each year for the configured TTL
type BrasilAPISource struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	cache      map[int]*cachedYear
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
}

type cachedYear struct {
	holidays  []store.Holiday
	fetchedAt time.Time
}

// brasilAPIHoliday is one element of the /api/feriados/v1/{year} response
type brasilAPIHoliday struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewBrasilAPISource creates a new BrasilAPISource. An empty baseURL uses the public service.
func NewBrasilAPISource(baseURL string, cacheTTL time.Duration, logger *zap.Logger) *BrasilAPISource {
	if baseURL == "" {
		baseURL = DefaultBrasilAPIURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BrasilAPISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:   logger,
		cache:    make(map[int]*cachedYear),
		cacheTTL: cacheTTL,
	}
}

// Name identifies the source in logs
func (c *BrasilAPISource) Name() string {
	return "brasilapi"
}

// Holidays returns the national holidays within [from, to], fetching each
// covered year
func (c *BrasilAPISource) Holidays(ctx context.Context, from, to time.Time) ([]store.Holiday, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("invalid range %s..%s", dateutil.FormatISO(from), dateutil.FormatISO(to))
	}

	var out []store.Holiday
	for year := from.Year(); year <= to.Year(); year++ {
		yearHolidays, err := c.Year(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, h := range yearHolidays {
			if inRange(h.Date, from, to) {
				out = append(out, h)
			}
		}
	}

	return dedupe(out), nil
}

// Year returns all holidays of year, served from cache while fresh
func (c *BrasilAPISource) Year(ctx context.Context, year int) ([]store.Holiday, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[year]; ok {
		if time.Since(cached.fetchedAt) < c.cacheTTL {
			c.cacheMu.RUnlock()
			c.logger.Debug("Using cached holidays", zap.Int("year", year))
			return cached.holidays, nil
		}
	}
	c.cacheMu.RUnlock()

	holidays, err := c.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{
		holidays:  holidays,
		fetchedAt: time.Now(),
	}
	c.cacheMu.Unlock()

	return holidays, nil
}

// fetchYear calls GET {base}/api/feriados/v1/{year}
func (c *BrasilAPISource) fetchYear(ctx context.Context, year int) ([]store.Holiday, error) {
	url := fmt.Sprintf("%s/api/feriados/v1/%d", c.baseURL, year)

	c.logger.Debug("Fetching holidays from BrasilAPI",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload []brasilAPIHoliday
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	holidays := make([]store.Holiday, 0, len(payload))
	for _, item := range payload {
		date, err := dateutil.ParseDate(item.Date)
		if err != nil {
			c.logger.Warn("Skipping holiday with invalid date",
				zap.String("date", item.Date),
				zap.String("name", item.Name))
			continue
		}
		holidays = append(holidays, store.Holiday{Date: date, Description: item.Name})
	}

	c.logger.Info("Holidays fetched from API",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))

	return dedupe(holidays), nil
}

// ClearCache clears the cache
func (c *BrasilAPISource) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*cachedYear)
	c.logger.Info("Holiday cache cleared")
}
