// Package main is the entry point for the gudang API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gudang/internal/core/trxcode"
	"gudang/internal/domain/auth"
	"gudang/internal/domain/importer"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
	"gudang/internal/domain/reports"
	"gudang/internal/domain/snapshot"
	v1 "gudang/internal/infrastructure/http/v1"
	"gudang/internal/infrastructure/storage/postgres"
	"gudang/pkg/config"
	"gudang/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting gudang server", "env", cfg.App.Env)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.InitSchema(ctx, pool); err != nil {
		log.Fatalw("failed to initialize schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	itemRepo := postgres.NewItemRepo(txManager)
	movementRepo := postgres.NewMovementRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)

	// --- Domain services ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = time.Duration(cfg.JWT.ExpirationMinutes) * time.Minute
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	itemService := inventory.NewService(itemRepo)
	ledgerEngine := ledger.NewEngine(itemService, movementRepo, txManager, trxcode.New())
	reportsService := reports.NewService(itemRepo, movementRepo, txManager)
	importService := importer.NewService(ledgerEngine)

	snapshotService, err := snapshot.NewService(itemRepo, movementRepo, txManager)
	if err != nil {
		log.Fatalw("failed to create snapshot service", "error", err)
	}

	// --- Router and HTTP server ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		TxManager:       txManager,
		Logger:          log,
		AuthService:     authService,
		JWTValidator:    jwtService,
		ItemService:     itemService,
		LedgerEngine:    ledgerEngine,
		ReportsService:  reportsService,
		ImportService:   importService,
		SnapshotService: snapshotService,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	pool.LogStats(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
