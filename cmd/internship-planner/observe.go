package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/internship-planner/pkg/dateutil"
)

func observeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Edit per-day observations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set DATE TEXT...",
		Short: "Set the observation for a date",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			return applyObservations(cmd, map[time.Time]string{
				date: strings.Join(args[1:], " "),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear DATE...",
		Short: "Clear observations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits := make(map[time.Time]string, len(args))
			for _, arg := range args {
				date, err := dateutil.ParseDate(arg)
				if err != nil {
					return err
				}
				edits[date] = ""
			}
			return applyObservations(cmd, edits)
		},
	})

	return cmd
}

func applyObservations(cmd *cobra.Command, edits map[time.Time]string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	changed, err := a.planner.ApplyObservationEdits(cmd.Context(), edits)
	if err != nil {
		return reportPersist(cmd.ErrOrStderr(), err)
	}
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "ℹ️  No changes")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved %d observation edit(s)\n", len(edits))
	return nil
}
