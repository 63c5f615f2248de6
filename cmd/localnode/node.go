package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"dineswift-local/config"
	"dineswift-local/internal/domain"
	"dineswift-local/internal/remote"
	"dineswift-local/internal/scheduler"
	"dineswift-local/internal/service"
	"dineswift-local/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// node is the fully wired process: connections, adapters and services.
type node struct {
	settings config.Settings
	logger   *slog.Logger

	db     *sql.DB
	rdb    *redis.Client
	pool   *pgxpool.Pool
	repo   *storage.PostgresRepository
	remote *remote.PostgresStore

	orders   *service.OrderService
	otps     *service.OTPService
	menus    *service.MenuService
	payments *service.PaymentService
	sync     *service.SyncManager
	health   *service.HealthService

	closers []func() error
}

func buildNode(ctx context.Context, settings config.Settings, logger *slog.Logger) (*node, error) {
	if settings.RemoteDatabaseURL == "" {
		return nil, errors.New("REMOTE_DATABASE_URL is required")
	}

	n := &node{settings: settings, logger: logger}
	n.db = config.MustInitPostgres()
	n.closers = append(n.closers, n.db.Close)
	n.rdb = config.MustInitRedis()
	n.closers = append(n.closers, n.rdb.Close)
	n.pool = config.MustInitRemotePool(ctx, settings.RemoteDatabaseURL)
	n.closers = append(n.closers, func() error { n.pool.Close(); return nil })

	n.repo = storage.NewPostgresRepository(n.db)
	n.remote = remote.NewPostgresStore(n.pool, settings.RemoteTimeout)
	cache := storage.NewRedisMenuCache(n.rdb, settings.MenuCacheTTL)

	publisher, err := n.publisher()
	if err != nil {
		n.Close()
		return nil, err
	}

	gateway := remote.NewHTTPGateway(remote.GatewayConfig{
		BaseURL: settings.GatewayURL,
		APIKey:  settings.GatewayAPIKey,
		Timeout: settings.GatewayTimeout,
	}, &http.Client{})

	n.otps = service.NewOTPService(n.repo, service.DefaultQRGenerator{BaseURL: settings.PickupBaseURL}, logger)

	n.orders = service.NewOrderService(n.repo, n.otps, n.repo, publisher, logger)
	n.orders.TaxRate = settings.TaxRate
	n.orders.Currency = settings.Currency
	n.orders.OTPTTL = settings.OTPTTL

	n.payments = service.NewPaymentService(n.repo, gateway, n.orders, n.repo, logger)
	n.payments.Currency = settings.Currency
	n.payments.Timeout = settings.GatewayTimeout
	n.payments.GatewayRetries = settings.GatewayRetries
	n.orders.Payments = n.payments

	n.menus = service.NewMenuService(n.repo, cache, n.remote, n.repo, logger)
	n.menus.Timeout = settings.RemoteTimeout

	n.sync = service.NewSyncManager(n.repo, n.repo, n.remote, n.menus, n.repo, publisher, logger)
	n.sync.Config.Workers = settings.SyncWorkers
	n.sync.Config.BatchSize = settings.SyncBatchSize
	n.sync.Config.BaseDelay = settings.SyncBaseDelay
	n.sync.Config.MaxDelay = settings.SyncMaxDelay
	n.sync.Config.RemoteTimeout = settings.RemoteTimeout
	n.sync.Config.ProcessingTimeout = settings.SyncProcessingTimeout
	n.sync.Config.TaxRate = settings.TaxRate

	n.health = service.NewHealthService(n.repo, map[domain.Component]service.Pinger{
		domain.ComponentDatabase: n.repo,
		domain.ComponentRedis:    cache,
		domain.ComponentRemote:   n.remote,
	}, logger)

	return n, nil
}

// publisher picks the event transport. A nil publisher disables events.
func (n *node) publisher() (service.EventPublisher, error) {
	switch n.settings.EventBroker {
	case config.BrokerKafka:
		p := storage.NewKafkaPublisher(config.NewKafkaWriter(n.settings.KafkaBroker, n.settings.OrderEventsTopic))
		n.closers = append(n.closers, p.Close)
		return p, nil
	case config.BrokerRabbitMQ:
		conn, err := config.DialRabbitMQ(n.settings.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		n.closers = append(n.closers, conn.Close)
		p, err := storage.NewRabbitPublisher(conn)
		if err != nil {
			return nil, fmt.Errorf("open rabbitmq channel: %w", err)
		}
		n.closers = append(n.closers, p.Close)
		return p, nil
	case config.BrokerNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown EVENT_BROKER %q", n.settings.EventBroker)
	}
}

func (n *node) jobs() []scheduler.Job {
	return scheduler.NodeJobs(scheduler.Drivers{
		Sync:     n.sync,
		Menus:    n.menus,
		OTPs:     n.otps,
		Payments: n.payments,
		Health:   n.health,
	}, scheduler.DefaultIntervals())
}

// Close releases resources in reverse order of acquisition.
func (n *node) Close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil {
			n.logger.Warn("close_failed", "error", err)
		}
	}
}
