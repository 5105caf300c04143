package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ParzivalXIII/inventory-management-system/internal/warehouse"
	"github.com/ParzivalXIII/inventory-management-system/pkg/bigquery"
	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/idempotency"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pubsub"
	"github.com/ParzivalXIII/inventory-management-system/pkg/redis"
)

const flushTimeout = 30 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "warehouse-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "warehouse-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis client", err)
		}
	}()

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

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

	bigqueryClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bigqueryClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery client", err)
		}
	}()

	writer, err := warehouse.NewWriter(bigqueryClient, warehouse.WriterConfig{
		OrderEventsTable: cfg.BigQuery.OrderEventsTable,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse writer", err)
		os.Exit(1)
	}

	consumer, err := warehouse.NewConsumer(
		pubsubClient.WarehouseSubscription(),
		warehouse.NewOrderEventHandler(writer),
		idempotencyManager,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  "warehouse-worker",
		"subscription": cfg.PubSub.WarehouseSubscription,
	})
	logg.Info(ctx, "starting warehouse worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "warehouse worker stopped unexpectedly", err)
		os.Exit(1)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := writer.Flush(flushCtx); err != nil {
		logg.Error(flushCtx, "failed to flush buffered rows", err)
	}

	logg.Info(ctx, "warehouse worker shutting down gracefully")
}
