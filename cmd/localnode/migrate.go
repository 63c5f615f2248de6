package main

import (
	"fmt"
	"log/slog"

	"dineswift-local/config"
	"dineswift-local/internal/remote"
	"dineswift-local/internal/storage"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var withRemote bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the local schema, and optionally the remote one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings := config.Load()

			db := config.MustInitPostgres()
			defer db.Close()
			if err := storage.NewPostgresRepository(db).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("local schema: %w", err)
			}
			slog.Info("local_schema_ready")

			if !withRemote {
				return nil
			}
			if settings.RemoteDatabaseURL == "" {
				return fmt.Errorf("--remote needs REMOTE_DATABASE_URL")
			}
			pool := config.MustInitRemotePool(ctx, settings.RemoteDatabaseURL)
			defer pool.Close()
			if err := remote.NewPostgresStore(pool, settings.RemoteTimeout).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("remote schema: %w", err)
			}
			slog.Info("remote_schema_ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withRemote, "remote", false, "also create the remote schema")
	return cmd
}
