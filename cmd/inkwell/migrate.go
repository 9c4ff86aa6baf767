package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/inkwell-blog/inkwell/backend/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Println("✅ Database migrations completed")
			return nil
		},
	}
}
