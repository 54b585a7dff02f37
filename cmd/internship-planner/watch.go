package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/internship-planner/internal/render"
	"github.com/username/internship-planner/internal/watch"
)

func watchCmd() *cobra.Command {
	var view, output string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the stored holidays, observations or config change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			paths := append(a.store.Paths(), a.cfg.File)
			paths = append(paths, a.cfg.Holidays.Files...)
			debounce := a.cfg.Watch.GetDebounce()
			a.Close()

			refresh := func(ctx context.Context, changed []string) {
				if err := renderOnce(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), view, output); err != nil {
					logger.Error("Render failed", zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
				}
			}

			refresh(ctx, nil)

			w := watch.New(paths, debounce, refresh, logger)
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&view, "view", "calendar", "What to render: calendar, html, schedule or summary")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

// renderOnce reloads config and store from scratch so edits made by other
// processes are picked up
func renderOnce(ctx context.Context, stdout, stderr io.Writer, view, output string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return withOutput(stdout, output, func(w io.Writer) error {
		if output == "" {
			fmt.Fprintf(w, "\n── Updated %s ──\n", time.Now().Format("15:04:05"))
		}

		switch strings.ToLower(view) {
		case "calendar":
			return a.renderCalendar(ctx, w, stderr, "text", "")
		case "html":
			return a.renderCalendar(ctx, w, stderr, "html", "Internship schedule")
		case "schedule":
			sched, err := a.planner.Schedule(ctx)
			if err != nil {
				return err
			}
			return render.WriteTable(w, sched)
		case "summary":
			sum, _, err := a.planner.Summary(ctx)
			if err != nil {
				return err
			}
			return render.WriteSummary(w, sum)
		default:
			return fmt.Errorf("unknown view %q", view)
		}
	})
}
