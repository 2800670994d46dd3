package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	activityfeedservice "fundry/contexts/funding-core/activity-feed-service"
	activitymemory "fundry/contexts/funding-core/activity-feed-service/adapters/memory"
	redisadapter "fundry/contexts/funding-core/activity-feed-service/adapters/redis"
	activityports "fundry/contexts/funding-core/activity-feed-service/ports"
	campaignservice "fundry/contexts/funding-core/campaign-service"
	campaignmemory "fundry/contexts/funding-core/campaign-service/adapters/memory"
	postgresadapter "fundry/contexts/funding-core/campaign-service/adapters/postgres"
	campaignworkers "fundry/contexts/funding-core/campaign-service/application/workers"
	campaignports "fundry/contexts/funding-core/campaign-service/ports"
	"fundry/internal/platform/config"
	"fundry/internal/platform/db"
	"fundry/internal/platform/httpserver"
	"fundry/internal/platform/messaging"
	"fundry/internal/platform/metrics"
	"fundry/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// eventBus is whichever broker adapter configuration selected; both
// implementations satisfy the publisher and subscriber ports.
type eventBus interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  campaignworkers.OutboxRelay
	relayEnabled bool
	activity     activityfeedservice.Module
	pollInterval time.Duration
	logger       *slog.Logger
}

// meteredPublisher counts successful broker publishes per topic. Metrics
// stay in the composition root so the relay itself remains broker- and
// instrumentation-agnostic.
type meteredPublisher struct {
	bus campaignports.EventPublisher
}

func (p meteredPublisher) Publish(ctx context.Context, topic string, event events.Envelope) error {
	if err := p.bus.Publish(ctx, topic, event); err != nil {
		return err
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// meteredOutbox mirrors the pending backlog into the outbox gauge on every
// relay pass.
type meteredOutbox struct {
	campaignports.OutboxRepository
}

func (m meteredOutbox) ListPendingOutbox(ctx context.Context, limit int) ([]campaignports.OutboxMessage, error) {
	rows, err := m.OutboxRepository.ListPendingOutbox(ctx, limit)
	if err == nil {
		metrics.SetOutboxPending(len(rows))
	}
	return rows, err
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var (
		pg           *db.Postgres
		campaignDeps campaignservice.Dependencies
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgresadapter.AutoMigrate(pg.DB); err != nil {
			_ = pg.Close()
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		campaignDeps = campaignservice.Dependencies{
			Campaigns:     repo,
			Contributions: repo,
			Votes:         repo,
			Outbox:        repo,
			Treasury:      campaignmemory.NewTreasury(),
			Clock:         postgresadapter.SystemClock{},
			IDGen:         postgresadapter.UUIDGenerator{},
		}
	} else {
		store := campaignmemory.NewStore()
		campaignDeps = campaignservice.Dependencies{
			Campaigns:     store,
			Contributions: store,
			Votes:         store,
			Outbox:        store,
			Treasury:      campaignmemory.NewTreasury(),
			Clock:         store,
			IDGen:         store,
		}
	}
	campaignDeps.FeeRateBps = cfg.FeeRateBps
	campaignDeps.AdminAccount = cfg.AdminAccount
	campaignDeps.VotingWindow = cfg.VotingWindow
	campaignDeps.Logger = logger

	campaignModule := campaignservice.NewModule(campaignDeps)

	activityStore := activitymemory.NewStore()
	activityModule := activityfeedservice.NewModule(activityfeedservice.Dependencies{
		Feed:   activityStore,
		Dedup:  activityStore,
		Clock:  activityStore,
		Logger: logger,
	})

	server := httpserver.New(campaignModule, activityModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.AutoMigrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, err
	}

	bus, err := buildBus(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)

	var dedup activityports.EventDedupStore
	activityStore := activitymemory.NewStore()
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		dedup = redisadapter.NewDedupStore(client, "")
	} else {
		dedup = activityStore
	}

	activityModule := activityfeedservice.NewModule(activityfeedservice.Dependencies{
		Feed:       activityStore,
		Dedup:      dedup,
		Subscriber: bus,
		Clock:      activityStore,
		Logger:     logger,
	})
	activityModule.Consumer.Disabled = !cfg.EnableActivity

	return &WorkerApp{
		postgres: pg,
		outboxRelay: campaignworkers.OutboxRelay{
			Outbox:    meteredOutbox{OutboxRepository: repo},
			Publisher: meteredPublisher{bus: bus},
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		activity:     activityModule,
		pollInterval: cfg.OutboxPoll,
		logger:       logger,
	}, nil
}

func buildBus(cfg config.Config, logger *slog.Logger) (eventBus, error) {
	if strings.TrimSpace(cfg.AMQPURL) != "" {
		return messaging.NewRabbitMQ(cfg.AMQPURL, logger)
	}
	return messaging.NewKafka(cfg.KafkaBrokers, logger)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.activity.Consumer.Start(ctx); err != nil {
		return err
	}

	if !w.relayEnabled {
		w.logger.Info("outbox relay disabled by feature flag",
			"event", "bootstrap_outbox_relay_disabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
