package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"offerbridge/internal/logging"
	"offerbridge/internal/store"
)

func newMigrateCmd() *cobra.Command {
	var status bool
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := store.Open(ctx, cfg.DatabaseURL, store.PoolOptions{MaxOpenConns: 2})
			if err != nil {
				return err
			}
			defer db.Close()

			if status {
				pending, err := store.PendingMigrations(ctx, db, cfg.MigrationsDir)
				if err != nil {
					return err
				}
				for _, v := range pending {
					fmt.Fprintln(cmd.OutOrStdout(), "pending", v)
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "up to date")
				}
				return nil
			}

			applied, err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir)
			if err != nil {
				return fmt.Errorf("migrations failed: %w", err)
			}
			logging.Default().Info().Strs("applied", applied).Msg("migrations done")
			return nil
		},
	}
	c.Flags().BoolVar(&status, "status", false, "list pending migrations without applying them")
	return c
}
