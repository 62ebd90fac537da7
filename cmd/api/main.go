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

	"github.com/billy17-netizen/posvougher-sub002/api/routes"
	"github.com/billy17-netizen/posvougher-sub002/internal/auth"
	"github.com/billy17-netizen/posvougher-sub002/internal/categories"
	"github.com/billy17-netizen/posvougher-sub002/internal/memberships"
	"github.com/billy17-netizen/posvougher-sub002/internal/payments"
	"github.com/billy17-netizen/posvougher-sub002/internal/products"
	"github.com/billy17-netizen/posvougher-sub002/internal/reports"
	"github.com/billy17-netizen/posvougher-sub002/internal/stores"
	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/internal/users"
	midtranswebhook "github.com/billy17-netizen/posvougher-sub002/internal/webhooks/midtrans"
	"github.com/billy17-netizen/posvougher-sub002/pkg/auth/session"
	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/metrics"
	"github.com/billy17-netizen/posvougher-sub002/pkg/midtrans"
	"github.com/billy17-netizen/posvougher-sub002/pkg/migrate"
	"github.com/billy17-netizen/posvougher-sub002/pkg/redis"
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

	midtransClient, err := midtrans.NewClient(context.Background(), cfg.Midtrans, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap midtrans client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	membershipRepo := memberships.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	transactionRepo := transactions.NewRepository(dbClient.DB())
	paymentRefRepo := payments.NewRepository(dbClient.DB())
	reportRepo := reports.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        userRepo,
		MembershipsRepo: membershipRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	exitOnError(logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "register service", err)

	storeService, err := stores.NewService(storeRepo, membershipRepo, userRepo, cfg.Password)
	exitOnError(logg, "store service", err)

	categoryService, err := categories.NewService(categoryRepo)
	exitOnError(logg, "category service", err)

	productService, err := products.NewService(productRepo, categoryRepo)
	exitOnError(logg, "product service", err)

	transactionService, err := transactions.NewService(transactionRepo, productRepo, dbClient)
	exitOnError(logg, "transaction service", err)

	paymentService, err := payments.NewService(paymentRefRepo, transactionRepo, dbClient, midtransClient, logg)
	exitOnError(logg, "payment service", err)

	reportService, err := reports.NewService(reportRepo)
	exitOnError(logg, "report service", err)

	webhookService, err := midtranswebhook.NewService(midtranswebhook.ServiceParams{
		Refs:            paymentRefRepo,
		Transactions:    transactionRepo,
		Products:        productRepo,
		DBClient:        dbClient,
		Verifier:        midtransClient,
		Metrics:         webhookMetrics,
		Logger:          logg,
		StrictSignature: cfg.Midtrans.StrictSignature(),
	})
	exitOnError(logg, "webhook service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Session:      sessionManager,
		Memberships:  membershipRepo,
		Metrics:      registry,
		Auth:         authService,
		Register:     registerService,
		Stores:       storeService,
		Categories:   categoryService,
		Products:     productService,
		Transactions: transactionService,
		Payments:     paymentService,
		Reports:      reportService,
		Webhook:      webhookService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"midtrans_env": cfg.Midtrans.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
