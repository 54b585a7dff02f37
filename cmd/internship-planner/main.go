package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/config"
	"github.com/username/internship-planner/internal/export"
	"github.com/username/internship-planner/internal/holidays"
	"github.com/username/internship-planner/internal/monthview"
	"github.com/username/internship-planner/internal/planner"
	"github.com/username/internship-planner/internal/render"
	"github.com/username/internship-planner/internal/schedule"
	"github.com/username/internship-planner/internal/store"
)

var (
	configPath string
	logger     *zap.Logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "internship-planner",
		Short: "Internship hours planner",
		Long:  "Project the day an internship reaches its required hours, with holidays, notes and a month calendar",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log settings
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log)
				if err != nil {
					initLogger("info") // Fallback to console
				}
			} else if err == nil {
				initLogger(cfg.Log.Level)
			} else {
				initLogger("info")
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: config.yaml in ., $HOME/.internship-planner, /etc/internship-planner)")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(holidayCmd())
	rootCmd.AddCommand(observeCmd())
	rootCmd.AddCommand(watchCmd())

	return rootCmd
}

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	store   store.Store
	planner *planner.Planner
	locale  calendar.Locale
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.StoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	src, err := holidaySource(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	p := planner.New(params, st, src, logger)
	p.Load(ctx)

	return &app{cfg: cfg, store: st, planner: p, locale: params.Locale}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
}

// holidaySource merges the configured rules and holiday files. It returns
// nil when neither is configured.
func holidaySource(cfg *config.Config) (holidays.Source, error) {
	var sources []holidays.Source

	if rules := cfg.Holidays.HolidayRules(); len(rules) > 0 {
		rs := holidays.NewRuleSource(rules, logger)
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("invalid holiday rule: %w", err)
		}
		sources = append(sources, rs)
	}
	for _, path := range cfg.Holidays.Files {
		sources = append(sources, fileSource(path))
	}

	switch len(sources) {
	case 0:
		return nil, nil
	case 1:
		return sources[0], nil
	default:
		return holidays.NewCompositeSource(logger, sources...), nil
	}
}

func fileSource(path string) holidays.Source {
	if strings.EqualFold(filepath.Ext(path), ".ics") {
		return holidays.NewICSSource(path, logger)
	}
	return holidays.NewFileSource(path, logger)
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Print the day-by-day ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := a.planner.Schedule(cmd.Context())
			if err != nil {
				return err
			}
			return render.WriteTable(cmd.OutOrStdout(), sched)
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print completion date and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sum, _, err := a.planner.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return render.WriteSummary(cmd.OutOrStdout(), sum)
		},
	}
}

func calendarCmd() *cobra.Command {
	var format, output, title string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Render the schedule as month grids",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return a.renderCalendar(cmd.Context(), w, cmd.ErrOrStderr(), format, title)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "Internship schedule", "Page title for html output")

	return cmd
}

// renderCalendar writes the month grids to w. A schedule that cannot reach
// its target has no grids; the warning goes to warn.
func (a *app) renderCalendar(ctx context.Context, w, warn io.Writer, format, title string) error {
	sched, err := a.planner.Schedule(ctx)
	if err != nil {
		return err
	}
	warnIncomplete(warn, sched)
	view := monthview.Build(sched, a.locale)

	switch strings.ToLower(format) {
	case "text", "":
		_, err := fmt.Fprintln(w, render.NewTerminal(a.locale).RenderView(view))
		return err
	case "html":
		return render.WriteHTML(w, view, a.locale, title)
	default:
		return fmt.Errorf("unknown calendar format %q (want text or html)", format)
	}
}

func exportCmd() *cobra.Command {
	var format, output string
	var withHolidays bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV or iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := a.planner.Schedule(cmd.Context())
			if err != nil {
				return err
			}

			format = strings.ToLower(format)
			if format != "csv" && format != "ics" {
				return fmt.Errorf("unknown export format %q (want csv or ics)", format)
			}
			warnIncomplete(cmd.ErrOrStderr(), sched)

			write := func(w io.Writer) error { return export.WriteCSV(w, sched) }
			if format == "ics" {
				cal := export.BuildCalendar(sched, export.ICSOptions{IncludeHolidays: withHolidays})
				if len(cal.Children) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", export.ErrNoEvents)
					return nil
				}
				write = func(w io.Writer) error { return export.EncodeCalendar(w, cal) }
			}

			if output == "" {
				output = export.DefaultFileName(sched.Start, format)
			}
			if err := withOutput(cmd.OutOrStdout(), output, write); err != nil {
				return err
			}

			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✅ Exported %d days to %s\n", len(sched.Entries), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv or ics")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, '-' for stdout (default schedule_<start>.<format>)")
	cmd.Flags().BoolVar(&withHolidays, "holidays", false, "Include holidays as transparent events (ics only)")

	return cmd
}

// withOutput runs fn against stdout when path is empty or "-", otherwise
// against a newly created file
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(stdout)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func warnIncomplete(w io.Writer, sched *schedule.Schedule) {
	if !sched.Complete() {
		fmt.Fprintf(w, "⚠️  %s\n", render.NotReached(sched))
	}
}

// reportPersist prints a persist failure as a warning: the edit applied to
// this run but was not saved
func reportPersist(w io.Writer, err error) error {
	if errors.Is(err, planner.ErrPersist) {
		fmt.Fprintf(w, "⚠️  %v\n", err)
	}
	return err
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
