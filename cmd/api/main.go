package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/ParzivalXIII/inventory-management-system/api/routes"
	"github.com/ParzivalXIII/inventory-management-system/internal/analytics"
	"github.com/ParzivalXIII/inventory-management-system/internal/auth"
	"github.com/ParzivalXIII/inventory-management-system/internal/orders"
	"github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	"github.com/ParzivalXIII/inventory-management-system/internal/products"
	"github.com/ParzivalXIII/inventory-management-system/internal/users"
	"github.com/ParzivalXIII/inventory-management-system/pkg/auth/session"
	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
	"github.com/ParzivalXIII/inventory-management-system/pkg/metrics"
	"github.com/ParzivalXIII/inventory-management-system/pkg/migrate"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox"
	"github.com/ParzivalXIII/inventory-management-system/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	outboxEmitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:         users.NewRepository(dbClient.DB()),
		OrganizationRepo: organizations.NewRepository(dbClient.DB()),
		SessionManager:   sessionManager,
		JWTConfig:        cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	signupService, err := auth.NewSignupService(auth.SignupServiceParams{
		TxRunner:       dbClient,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create signup service", err)
		os.Exit(1)
	}

	organizationService, err := organizations.NewService(
		organizations.NewRepository(dbClient.DB()),
		users.NewRepository(dbClient.DB()),
		cfg.Password,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create organization service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(
		dbClient,
		products.NewRepository(dbClient.DB()),
		outboxEmitter,
		cfg.Inventory,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		products.NewRepository(dbClient.DB()),
		outboxEmitter,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			metricsHandler,
			authService,
			signupService,
			organizationService,
			productService,
			orderService,
			analyticsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
