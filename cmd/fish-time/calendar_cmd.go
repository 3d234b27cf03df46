package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Superior-Josh/fish-time-pro/internal/config"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

func calendarCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show how every day of a month is classified",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			year, month := now.Year(), now.Month()
			if monthStr != "" {
				parsed, err := time.Parse("2006-01", monthStr)
				if err != nil {
					return fmt.Errorf("invalid --month value: %w", err)
				}
				year, month = parsed.Year(), parsed.Month()
			}

			cfg, err := config.NewLoader(configPath, logger).Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			manager, closeCache, err := initializeManager(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			view := manager.Month(cmd.Context(), now, year, month)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n📅 %s %d\n", view.Month, view.Year)
			fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
			for i, kind := range view.Kinds {
				date := time.Date(year, month, i+1, 0, 0, 0, 0, time.Local)
				marker := " "
				if dateutil.IsSameDay(date, now) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s %s  %s\n", marker, date.Format("2006-01-02"), date.Weekday().String()[:3], kind)
			}
			fmt.Fprintln(out, "───────────────────────────────────────────────────────")
			fmt.Fprintf(out, "  Working days:   %d\n", view.Aggregate.TotalWorkingDays)
			if view.Aggregate.WorkedDaysSoFar > 0 {
				fmt.Fprintf(out, "  Worked so far:  %d\n", view.Aggregate.WorkedDaysSoFar)
			}
			fmt.Fprintf(out, "  Rest weekdays:  %v\n", cfg.Work.RestDaySet().Slice())
			s := cfg.Work.Schedule()
			fmt.Fprintf(out, "  Work hours:     %s-%s, %s-%s\n",
				dateutil.FormatClock(s.MorningStart), dateutil.FormatClock(s.MorningEnd),
				dateutil.FormatClock(s.AfternoonStart), dateutil.FormatClock(s.AfternoonEnd))
			if view.CalendarStatus != "" {
				fmt.Fprintf(out, "  ⚠️  %s\n", view.CalendarStatus)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month to show (YYYY-MM), defaults to the current month")

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(configPath, logger)
			cfg, err := loader.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}

			if used := loader.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "# built-in defaults")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}
