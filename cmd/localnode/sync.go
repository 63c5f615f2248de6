package main

import (
	"log/slog"

	"dineswift-local/config"
	"dineswift-local/internal/scheduler"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run every background job once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := buildNode(ctx, config.Load(), slog.Default())
			if err != nil {
				return err
			}
			defer n.Close()

			return scheduler.New(slog.Default(), n.jobs()...).RunAll(ctx)
		},
	}
}
