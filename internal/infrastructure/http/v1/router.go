// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"gudang/internal/domain/auth"
	"gudang/internal/domain/importer"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
	"gudang/internal/domain/reports"
	"gudang/internal/domain/snapshot"
	"gudang/internal/infrastructure/http/v1/handlers"
	"gudang/internal/infrastructure/http/v1/middleware"
	"gudang/internal/infrastructure/storage/postgres"
	"gudang/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger

	AuthService     *auth.Service
	JWTValidator    middleware.JWTValidator
	ItemService     *inventory.Service
	LedgerEngine    *ledger.Engine
	ReportsService  *reports.Service
	ImportService   *importer.Service
	SnapshotService *snapshot.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery first, error handler renders last.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	itemHandler := handlers.NewItemHandler(base, cfg.ItemService)
	ledgerHandler := handlers.NewLedgerHandler(base, cfg.LedgerEngine)
	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)
	adminHandler := handlers.NewAdminHandler(base, cfg.ImportService, cfg.SnapshotService, cfg.TxManager)

	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protected.GET("/items", itemHandler.List)
		protected.GET("/items/low-stock", itemHandler.LowStock)
		protected.GET("/items/lookup", itemHandler.Lookup)

		protected.POST("/receipts", ledgerHandler.ReceiveSingle)
		protected.POST("/receipts/batch", ledgerHandler.ReceiveBatch)
		protected.POST("/issues", ledgerHandler.IssueSingle)
		protected.POST("/issues/batch", ledgerHandler.IssueBatch)
		protected.GET("/movements", ledgerHandler.Movements)
		protected.GET("/bundles/:code", ledgerHandler.Bundle)

		protected.GET("/reports/summary", reportsHandler.Summary)
		protected.GET("/reports/totals", reportsHandler.Totals)
		protected.GET("/reports/compare", reportsHandler.Compare)

		protected.POST("/import/csv", adminHandler.ImportCSV)
		protected.GET("/snapshot", adminHandler.ExportSnapshot)

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())

		admin.POST("/auth/register", authHandler.Register)
		admin.GET("/users", authHandler.ListUsers)
		admin.DELETE("/users/:id", authHandler.DeleteUser)
		admin.POST("/snapshot/restore", adminHandler.RestoreSnapshot)
		admin.POST("/admin/reset", adminHandler.ResetStore)
	}

	return router
}
