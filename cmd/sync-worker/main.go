package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conviteapp/convite-backend/internal/events"
	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/internal/sync"
	"github.com/conviteapp/convite-backend/pkg/config"
	"github.com/conviteapp/convite-backend/pkg/db"
	"github.com/conviteapp/convite-backend/pkg/logger"
	"github.com/conviteapp/convite-backend/pkg/metrics"
	"github.com/conviteapp/convite-backend/pkg/migrate"
	"github.com/conviteapp/convite-backend/pkg/outbox"
	"github.com/conviteapp/convite-backend/pkg/outbox/idempotency"
	"github.com/conviteapp/convite-backend/pkg/pubsub"
	"github.com/conviteapp/convite-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	eventsRepo := events.NewRepository(dbClient.DB())
	lineItemsSvc, err := lineitems.NewService(lineitems.NewRepository(dbClient.DB()), eventsRepo, dbClient, outboxSvc)
	requireResource(ctx, logg, "line items service", err)

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	coordinator, err := sync.NewCoordinator(lineItemsSvc, eventsRepo, syncMetrics, logg)
	requireResource(ctx, logg, "sync coordinator", err)

	// Poll fallback covers events that existed before the worker started; the
	// consumer watches new ones as their first change events arrive.
	err = coordinator.SeedWatch(context.Background(), eventsRepo)
	requireResource(ctx, logg, "watch seed", err)

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Sync.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := sync.NewConsumer(coordinator, pubsubClient.ChangeSubscription(), idempotencyManager, logg)
	requireResource(ctx, logg, "change consumer", err)

	poller, err := sync.NewPoller(coordinator, cfg.Sync.PollInterval, logg)
	requireResource(ctx, logg, "poller", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":           cfg.App.Env,
		"poll_interval": cfg.Sync.PollInterval.String(),
	})
	logg.Info(runCtx, "sync worker ready")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: metricsMux(registry),
	}

	errCh := make(chan error, 4)
	go func() { errCh <- coordinator.Run(runCtx) }()
	go func() { errCh <- consumer.Run(runCtx) }()
	go func() { errCh <- poller.Run(runCtx) }()
	go func() { errCh <- metricsServer.ListenAndServe() }()

	select {
	case <-runCtx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "sync worker not working", err)
			stop()
			_ = metricsServer.Close()
			os.Exit(1)
		}
	}

	_ = metricsServer.Close()
	logg.Info(runCtx, "sync worker shutting down gracefully")
}

func metricsMux(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
