package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/internship-planner/internal/calendar"
	"github.com/username/internship-planner/internal/holidays"
	"github.com/username/internship-planner/pkg/dateutil"
)

func holidayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage holidays and no-activity days",
	}

	cmd.AddCommand(holidayAddCmd())
	cmd.AddCommand(holidayRemoveCmd())
	cmd.AddCommand(holidayListCmd())
	cmd.AddCommand(holidayImportCmd())

	return cmd
}

func holidayAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE [DESCRIPTION...]",
		Short: "Mark a date as a holiday",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			description := strings.TrimSpace(strings.Join(args[1:], " "))

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.planner.AddHoliday(cmd.Context(), date, description)
			if err != nil {
				return reportPersist(cmd.ErrOrStderr(), err)
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  %s is already a holiday\n", dateutil.FormatISO(date))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Added holiday %s\n", dateutil.FormatISO(date))
			return nil
		},
	}
}

func holidayRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove DATE...",
		Aliases: []string{"rm"},
		Short:   "Remove holidays",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates := make([]time.Time, 0, len(args))
			for _, arg := range args {
				date, err := dateutil.ParseDate(arg)
				if err != nil {
					return err
				}
				dates = append(dates, date)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.planner.RemoveHolidays(cmd.Context(), dates...)
			if err != nil {
				return reportPersist(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %d holiday(s)\n", removed)
			return nil
		},
	}
}

func holidayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored holidays",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.planner.Holidays().List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No holidays")
				return nil
			}
			for _, h := range list {
				weekday := a.locale.WeekdayName(calendar.WeekdayIndex(h.Date))
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-13s  %s\n", dateutil.FormatISO(h.Date), weekday, h.Description)
			}
			return nil
		},
	}
}

func holidayImportCmd() *cobra.Command {
	var file, icsFile string
	var remote bool
	var year int
	var from, to string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import holidays from a file, an .ics calendar or BrasilAPI",
		Long: "Import holidays into the store. Without --year or --from/--to the range\n" +
			"runs from the start date to the projected completion date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var sources []holidays.Source
			if file != "" {
				sources = append(sources, holidays.NewFileSource(file, logger))
			}
			if icsFile != "" {
				sources = append(sources, holidays.NewICSSource(icsFile, logger))
			}
			if remote {
				sources = append(sources, holidays.NewBrasilAPISource(
					a.cfg.Holidays.Remote.URL,
					a.cfg.Holidays.Remote.GetCacheTTL(),
					logger))
			}
			if len(sources) == 0 {
				return fmt.Errorf("nothing to import: use --file, --ics or --remote")
			}

			start, end, err := importRange(cmd, a, year, from, to)
			if err != nil {
				return err
			}

			total := 0
			for _, src := range sources {
				added, err := a.planner.ImportHolidays(cmd.Context(), src, start, end)
				if err != nil {
					return reportPersist(cmd.ErrOrStderr(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "   • %s: %d new holiday(s)\n", src.Name(), added)
				total += added
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d holiday(s) between %s and %s\n",
				total, dateutil.FormatISO(start), dateutil.FormatISO(end))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Text file with one 'YYYY-MM-DD [description]' per line")
	cmd.Flags().StringVar(&icsFile, "ics", "", "iCalendar file")
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch Brazilian national holidays from BrasilAPI")
	cmd.Flags().IntVar(&year, "year", 0, "Import a single calendar year")
	cmd.Flags().StringVar(&from, "from", "", "First date to import")
	cmd.Flags().StringVar(&to, "to", "", "Last date to import")

	return cmd
}

func importRange(cmd *cobra.Command, a *app, year int, from, to string) (time.Time, time.Time, error) {
	if year != 0 {
		start, end := holidays.YearRange(year)
		return start, end, nil
	}

	params := a.planner.Params()
	start := dateutil.StartOfDay(params.Start)
	end := start.AddDate(1, 0, 0)

	if sched, err := a.planner.Schedule(cmd.Context()); err == nil {
		if done, ok := sched.Completion.Get(); ok {
			end = done
		}
	}

	var err error
	if from != "" {
		if start, err = dateutil.ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if end, err = dateutil.ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: %s is before %s",
			dateutil.FormatISO(end), dateutil.FormatISO(start))
	}
	return start, end, nil
}
