package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/conviteapp/convite-backend/api/routes"
	"github.com/conviteapp/convite-backend/internal/consolidation"
	"github.com/conviteapp/convite-backend/internal/events"
	"github.com/conviteapp/convite-backend/internal/ingredients"
	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/internal/recipes"
	"github.com/conviteapp/convite-backend/pkg/config"
	"github.com/conviteapp/convite-backend/pkg/db"
	"github.com/conviteapp/convite-backend/pkg/logger"
	"github.com/conviteapp/convite-backend/pkg/migrate"
	"github.com/conviteapp/convite-backend/pkg/outbox"
	"github.com/conviteapp/convite-backend/pkg/pubsub"
	"github.com/conviteapp/convite-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	eventsRepo := events.NewRepository(dbClient.DB())
	consolidationRepo := consolidation.NewRepository(dbClient.DB())

	eventsSvc, err := events.NewService(eventsRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}
	lineItemsSvc, err := lineitems.NewService(lineitems.NewRepository(dbClient.DB()), eventsRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create line items service", err)
		os.Exit(1)
	}
	consolidationSvc, err := consolidation.NewService(consolidationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create consolidation service", err)
		os.Exit(1)
	}
	recipesSvc, err := recipes.NewService(recipes.NewRepository(dbClient.DB()), consolidationRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create recipes service", err)
		os.Exit(1)
	}
	ingredientsSvc, err := ingredients.NewService(ingredients.NewRepository(dbClient.DB()), dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create ingredients service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			PubSub:        pubsubClient,
			Events:        eventsSvc,
			LineItems:     lineItemsSvc,
			Consolidation: consolidationSvc,
			Recipes:       recipesSvc,
			Ingredients:   ingredientsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
