package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	payoutengine "peerbonus/contexts/award-core/payout-engine"
	ledgeradapter "peerbonus/contexts/award-core/payout-engine/adapters/ledger"
	payoutpostgres "peerbonus/contexts/award-core/payout-engine/adapters/postgres"
	payoutworkers "peerbonus/contexts/award-core/payout-engine/application/workers"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	voteledger "peerbonus/contexts/award-core/vote-ledger"
	ledgerpostgres "peerbonus/contexts/award-core/vote-ledger/adapters/postgres"
	ledgerworkers "peerbonus/contexts/award-core/vote-ledger/application/workers"
	"peerbonus/internal/platform/config"
	"peerbonus/internal/platform/db"
	"peerbonus/internal/platform/httpserver"
	"peerbonus/internal/platform/messaging"
	"peerbonus/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	outboxRelay   ledgerworkers.OutboxRelay
	sweeper       ledgerworkers.SessionSweeper
	closeConsumer payoutworkers.SessionCloseConsumer
	metrics       *metrics.Metrics
	metricsAddr   string
	pollInterval  time.Duration
	logger        *slog.Logger
}

type modules struct {
	ledger voteledger.Module
	payout payoutengine.Module
	repo   *ledgerpostgres.Repository
}

func buildModules(ctx context.Context, cfg config.Config, pg *db.Postgres, logger *slog.Logger) (modules, error) {
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	if err := ledgerRepo.Migrate(ctx); err != nil {
		return modules{}, err
	}
	payoutRepo := payoutpostgres.NewRepository(pg.DB, logger)
	if err := payoutRepo.Migrate(ctx); err != nil {
		return modules{}, err
	}

	ledgerModule := voteledger.NewModule(voteledger.Dependencies{
		Sessions:     ledgerRepo,
		Participants: ledgerRepo,
		Votes:        ledgerRepo,
		Results:      payoutRepo,
		Outbox:       ledgerRepo,
		Clock:        ledgerpostgres.SystemClock{},
		IDGen:        ledgerpostgres.UUIDGenerator{},
		ScoreMin:     cfg.ScoreMin,
		ScoreMax:     cfg.ScoreMax,
		Logger:       logger,
	})
	payoutModule := payoutengine.NewModule(payoutengine.Dependencies{
		Ledger: ledgeradapter.Source{
			Sessions:     ledgerRepo,
			Participants: ledgerRepo,
			Votes:        ledgerRepo,
		},
		Results: payoutRepo,
		Policy:  scoring.Policy(cfg.NormalizationPolicy),
		Logger:  logger,
	})
	return modules{ledger: ledgerModule, payout: payoutModule, repo: ledgerRepo}, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("postgres_dsn is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(context.Background(), cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		mods.ledger,
		mods.payout,
		metrics.New(cfg.ServiceName),
		logger,
		cfg.HTTPAddr,
	)
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
		return nil, errors.New("postgres_dsn is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(context.Background(), cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		postgres:    pg,
		metrics:     metrics.New(cfg.ServiceName),
		metricsAddr: cfg.MetricsAddr,
		outboxRelay: ledgerworkers.OutboxRelay{
			Outbox:    mods.repo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		sweeper: ledgerworkers.SessionSweeper{
			Sessions: mods.repo,
			Closer:   mods.ledger.Sessions,
			Clock:    ledgerpostgres.SystemClock{},
			Logger:   logger,
		},
		closeConsumer: payoutworkers.SessionCloseConsumer{
			Events:      bus.Subscribe("session.closed", 64),
			Recalculate: mods.payout.Recalculate,
			Logger:      logger,
		},
		pollInterval: cfg.WorkerPollInterval(),
		logger:       logger,
	}, nil
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
	go func() {
		if err := w.closeConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("session close consumer stopped",
				"event", "bootstrap_close_consumer_stopped",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", w.metrics.Handler())
	go func() {
		if err := http.ListenAndServe(w.metricsAddr, metricsMux); err != nil {
			w.logger.Error("worker metrics listener stopped",
				"event", "bootstrap_metrics_listener_stopped",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		closed, err := w.sweeper.RunOnce(ctx)
		if err != nil {
			return err
		}
		w.metrics.SessionsClosed.Add(float64(closed))
		published, err := w.outboxRelay.RunOnce(ctx)
		if err != nil {
			return err
		}
		w.metrics.OutboxPublished.Add(float64(published))
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
