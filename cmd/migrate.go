package main

import (
	"github.com/spf13/cobra"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return db.Migrate(cfg.DatabaseURL, log)
		},
	}
}
