package holidays

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/store"
	"github.com/username/internship-planner/pkg/dateutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource(t *testing.T) {
	path := writeFile(t, "holidays.txt", `# national holidays
2025-11-20 Consciência Negra

2025-12-25 Natal
bogus line
2026-01-01
2027-01-01 out of range
`)
	logger, _ := zap.NewDevelopment()
	src := NewFileSource(path, logger)

	got, err := src.Holidays(context.Background(), dateutil.Date(2025, 11, 14), dateutil.Date(2026, 12, 31))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, store.Holiday{Date: dateutil.Date(2025, 11, 20), Description: "Consciência Negra"}, got[0])
	assert.Equal(t, "", got[2].Description)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.txt"), nil)
	_, err := src.Holidays(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
}

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:christmas@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20251225\r\n" +
	"DTEND;VALUE=DATE:20251226\r\n" +
	"SUMMARY:Christmas\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:recess@test\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20251229\r\n" +
	"DTEND;VALUE=DATE:20260102\r\n" +
	"SUMMARY:Year-end recess\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecodeICS(t *testing.T) {
	got, err := DecodeICS(context.Background(), strings.NewReader(sampleICS),
		dateutil.Date(2025, 11, 1), dateutil.Date(2026, 12, 31), zap.NewNop())
	require.NoError(t, err)

	want := []time.Time{
		dateutil.Date(2025, 12, 25),
		dateutil.Date(2025, 12, 29),
		dateutil.Date(2025, 12, 30),
		dateutil.Date(2025, 12, 31),
		dateutil.Date(2026, 1, 1),
	}
	require.Len(t, got, len(want))
	for i, d := range want {
		assert.Equal(t, d, got[i].Date, "holiday %d", i)
	}
	assert.Equal(t, "Christmas", got[0].Description)
	assert.Equal(t, "Year-end recess", got[4].Description)
}

func TestICSSource_Range(t *testing.T) {
	path := writeFile(t, "cal.ics", sampleICS)
	src := NewICSSource(path, zap.NewNop())

	got, err := src.Holidays(context.Background(), dateutil.Date(2026, 1, 1), dateutil.Date(2026, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dateutil.Date(2026, 1, 1), got[0].Date)
}

func TestRuleSource(t *testing.T) {
	src := NewRuleSource([]Rule{
		{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Description: "Christmas"},
		{RRule: "RRULE:FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1", Description: "New Year"},
		{RRule: "NOT A RULE"},
	}, zap.NewNop())

	got, err := src.Holidays(context.Background(), dateutil.Date(2025, 11, 14), dateutil.Date(2026, 12, 25))
	require.NoError(t, err)

	var dates []string
	for _, h := range got {
		dates = append(dates, dateutil.FormatISO(h.Date))
	}
	assert.Equal(t, []string{"2025-12-25", "2026-01-01", "2026-12-25"}, dates)

	assert.Error(t, src.Validate())
	assert.NoError(t, NewRuleSource(src.rules[:2], nil).Validate())
}

func TestRuleSource_AnchoredStart(t *testing.T) {
	src := NewRuleSource([]Rule{{
		RRule:       "FREQ=WEEKLY;COUNT=3",
		Description: "Study leave",
		Start:       dateutil.Date(2025, 11, 21),
	}}, nil)

	got, err := src.Holidays(context.Background(), dateutil.Date(2025, 11, 1), dateutil.Date(2026, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, dateutil.Date(2025, 12, 5), got[2].Date)
}

func newBrasilAPIServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/api/feriados/v1/2025":
			fmt.Fprint(w, `[
				{"date":"2025-11-20","name":"Dia da Consciência Negra","type":"national"},
				{"date":"2025-12-25","name":"Natal","type":"national"},
				{"date":"garbage","name":"Broken","type":"national"}
			]`)
		case "/api/feriados/v1/2026":
			fmt.Fprint(w, `[{"date":"2026-01-01","name":"Confraternização mundial","type":"national"}]`)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBrasilAPISource(t *testing.T) {
	var calls atomic.Int32
	srv := newBrasilAPIServer(t, &calls)
	src := NewBrasilAPISource(srv.URL, time.Hour, zap.NewNop())
	ctx := context.Background()

	got, err := src.Holidays(ctx, dateutil.Date(2025, 12, 1), dateutil.Date(2026, 6, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Natal", got[0].Description)
	assert.Equal(t, dateutil.Date(2026, 1, 1), got[1].Date)
	assert.Equal(t, int32(2), calls.Load())

	// Served from cache
	year, err := src.Year(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, year, 2)
	assert.Equal(t, int32(2), calls.Load())

	src.ClearCache()
	_, err = src.Year(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBrasilAPISource_Errors(t *testing.T) {
	var calls atomic.Int32
	srv := newBrasilAPIServer(t, &calls)
	src := NewBrasilAPISource(srv.URL, time.Hour, nil)

	_, err := src.Year(context.Background(), 1999)
	assert.Error(t, err)

	_, err = src.Holidays(context.Background(), dateutil.Date(2026, 1, 1), dateutil.Date(2025, 1, 1))
	assert.Error(t, err)
}

type stubSource struct {
	name     string
	holidays []store.Holiday
	err      error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Holidays(context.Context, time.Time, time.Time) ([]store.Holiday, error) {
	return s.holidays, s.err
}

func TestCompositeSource(t *testing.T) {
	christmas := dateutil.Date(2025, 12, 25)
	primary := stubSource{name: "primary", holidays: []store.Holiday{{Date: christmas, Description: "Natal"}}}
	secondary := stubSource{name: "secondary", holidays: []store.Holiday{
		{Date: christmas, Description: "Christmas"},
		{Date: dateutil.Date(2026, 1, 1), Description: "New Year"},
	}}
	broken := stubSource{name: "broken", err: errors.New("boom")}

	cs := NewCompositeSource(zap.NewNop(), primary, broken, secondary)
	got, err := cs.Holidays(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Natal", got[0].Description)
	assert.Equal(t, "composite(primary,broken,secondary)", cs.Name())

	_, err = NewCompositeSource(nil, broken).Holidays(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
}
