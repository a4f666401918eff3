package cmd

import (
	"fmt"

	"github.com/krkdev/contacts-api/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return db.RunMigrations(database.DB, cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return db.MigrateDown(database.DB, cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			err = db.MigrationStatus(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}

			version, err := db.Version(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Println("Current version:", version)
			return nil
		},
	})

	return cmd
}
