package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dineswift-local/config"
	httpapi "dineswift-local/internal/api/http"
	"dineswift-local/internal/scheduler"
	"dineswift-local/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	var noJobs bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, background jobs and the payment consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Load(), slog.Default(), !noJobs)
		},
	}
	cmd.Flags().BoolVar(&noJobs, "no-jobs", false, "serve the API without background jobs")
	return cmd
}

func serve(ctx context.Context, settings config.Settings, logger *slog.Logger, withJobs bool) error {
	n, err := buildNode(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("local schema: %w", err)
	}

	handler := httpapi.NewHandler(n.orders, n.otps, n.menus, n.payments, n.sync, n.health)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.StartServer(ctx, settings.HTTPAddr, httpapi.NewRouter(handler))
	})

	if withJobs {
		sched := scheduler.New(logger, n.jobs()...)
		g.Go(func() error { return sched.Start(ctx) })
	}

	if settings.EventBroker == config.BrokerKafka {
		reader := config.NewKafkaReader(settings.KafkaBroker, settings.PaymentTopic, settings.PaymentGroupID)
		defer reader.Close()
		consumer := service.NewCompletionConsumer(reader, n.payments, logger)
		g.Go(func() error { return consumer.Start(ctx) })
	}

	logger.Info("node_started", "addr", settings.HTTPAddr, "broker", settings.EventBroker, "jobs", withJobs)
	err = g.Wait()
	logger.Info("node_stopped")
	return err
}
