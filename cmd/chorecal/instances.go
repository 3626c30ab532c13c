package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dukerupert/chorecal/internal/chore"
	"github.com/dukerupert/chorecal/internal/config"
	"github.com/dukerupert/chorecal/internal/database"
	"github.com/dukerupert/chorecal/internal/gamification"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
)

func instancesCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "instances",
		Short: "Print chore occurrences in a date range as JSON",
		Long: `Expand every chore into its occurrences between --start and --end
(inclusive) and print them with their status as JSON.

Without flags the configured calendar window around today is used.

Examples:
  chorecal instances
  chorecal instances --start 2024-03-01 --end 2024-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			today := recurrence.DateOf(time.Now().In(loc))

			from, to := chore.CalendarWindow(today, cfg.Calendar.MonthsBefore, cfg.Calendar.MonthsAfter)
			if start != "" {
				if from, err = recurrence.ParseDate(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if end != "" {
				if to, err = recurrence.ParseDate(end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			if to.Before(from) {
				return fmt.Errorf("--end %s is before --start %s", to, from)
			}

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			cs, ms := store.NewChoreStore(db), store.NewMemberStore(db)
			chores, err := cs.List()
			if err != nil {
				return err
			}
			members, err := ms.List()
			if err != nil {
				return err
			}
			completions, err := cs.ListCompletionsBetween(from, to)
			if err != nil {
				return err
			}

			instances := chore.WithStatus(chore.Generate(chores, members, completions, from, to), today)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(instances)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (YYYY-MM-DD)")

	return cmd
}

func badgesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Print the badge catalog as YAML",
		Long: `Print the badge catalog in effect. With --file the given catalog is
loaded and checked instead of the configured one, which makes this a
quick way to validate an override before deploying it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				file = cfg.Gamification.BadgesFile
			}

			scorer, err := gamification.Load(file)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{"badges": scorer.Badges()})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file to load instead of the configured one")

	return cmd
}
