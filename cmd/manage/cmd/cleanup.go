package cmd

import (
	"fmt"

	"github.com/krkdev/contacts-api/internal/jobs"
	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/spf13/cobra"
)

func CleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions, spent tokens and stale uploads once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cleanup := jobs.NewCleanup(
				repository.NewSessionRepository(database),
				repository.NewTokenRepository(database),
				cfg.TmpDir,
			)

			res, err := cleanup.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d sessions, %d tokens, %d temp files\n", res.Sessions, res.Tokens, res.TmpFiles)
			return nil
		},
	}
}
