package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorecal/internal/config"
	"github.com/dukerupert/chorecal/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back, or list schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.OpenNoMigrate(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			return database.Migrate(db, command)
		},
	}
}
