package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medicoord/coordinator-go/internal/config"
	"github.com/medicoord/coordinator-go/internal/handler"
	"github.com/medicoord/coordinator-go/internal/infra/cache"
	"github.com/medicoord/coordinator-go/internal/infra/client"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/infra/resilience"
	"github.com/medicoord/coordinator-go/internal/infra/staticdata"
	"github.com/medicoord/coordinator-go/internal/port"
	"github.com/medicoord/coordinator-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("completion_model", cfg.CompletionModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_concurrent_coordinations", cfg.MaxConcurrentCoordinations),
		zap.Duration("inventory_cache_ttl", cfg.InventoryCacheTTL),
		zap.Bool("operator_auth_enabled", cfg.OperatorKeyHash != ""),
	)

	if cfg.CompletionAPIKey == "" {
		logger.Warn("PERPLEXITY_API_KEY not set, completion calls will fail")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "medicoord-coordinator")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	cb := resilience.NewCircuitBreaker("completion")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrentCoordinations)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	completer := client.NewCompletionClient(
		httpClient,
		cfg.CompletionBaseURL,
		cfg.CompletionAPIKey,
		cfg.CompletionModel,
		cb,
		metrics,
	)

	// --- Reference data ---
	directory, err := staticdata.NewPatientDirectory(cfg.PatientsFile)
	if err != nil {
		logger.Fatal("failed to load patient directory", zap.Error(err))
	}
	inventory, err := staticdata.NewInventory(cfg.InventoryFile)
	if err != nil {
		logger.Fatal("failed to load inventory", zap.Error(err))
	}

	// --- Cache ---
	snapshotCache := cache.New[map[string]int](cfg.InventoryCacheTTL)
	defer snapshotCache.Close()

	// --- Services ---
	responders := []port.Responder{
		service.NewSupplyChainResponder(completer, inventory, snapshotCache, metrics, logger),
		service.NewClinicalSafetyResponder(completer, directory, metrics, logger),
		service.NewDischargePlanningResponder(completer, metrics, logger),
	}
	classifier := service.NewClassifier(completer, metrics, logger)
	ledger := service.NewLedger()
	coord := service.NewCoordinator(classifier, responders, ledger, metrics, logger)

	tokenSvc := service.NewTokenService(cfg.OperatorKeyHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if tokenSvc.Enabled() {
		logger.Info("operator auth enabled")
	} else {
		logger.Warn("operator auth disabled: OPERATOR_KEY_HASH not set")
	}

	// --- Router ---
	router := handler.NewRouter(coord, ledger, tokenSvc, directory, inventory, bulkhead, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
