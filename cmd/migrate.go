package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/tutorlog-backend/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := app.New(commandContext(cmd), cfg, version, true)
			if err != nil {
				return err
			}
			defer a.Close()
			a.Log.Info("migration complete", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
