// Package main provides a CLI tool for seeding the database with an
// initial admin account and optional demo stock.
package main

import (
	"context"
	"fmt"
	"os"

	"gudang/internal/core/apperror"
	"gudang/internal/core/trxcode"
	"gudang/internal/core/types"
	"gudang/internal/domain/auth"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
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

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	if err := postgres.InitSchema(ctx, pool); err != nil {
		log.Fatalw("failed to initialize schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	userRepo := postgres.NewUserRepo(txManager)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWT.Secret))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	if err := seedAdminUser(ctx, authService, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		itemRepo := postgres.NewItemRepo(txManager)
		movementRepo := postgres.NewMovementRepo(txManager)
		engine := ledger.NewEngine(inventory.NewService(itemRepo), movementRepo, txManager, trxcode.New())

		if err := seedDemoData(ctx, engine, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, authService *auth.Service, log *logger.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	user, err := authService.Register(ctx, auth.RegisterRequest{
		Username: username,
		Password: password,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			log.Infow("admin user already exists", "username", username)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "username", user.Username, "user_id", user.ID)
	return nil
}

func seedDemoData(ctx context.Context, engine *ledger.Engine, log *logger.Logger) error {
	lines := []ledger.ReceiptLine{
		{Name: "Beras", Unit: "kg", Quantity: types.NewQuantityFromFloat64(250), Category: "Sembako", MinStock: types.NewQuantityFromFloat64(50), RackLocation: "A-01"},
		{Name: "Minyak Goreng", Unit: "liter", Quantity: types.NewQuantityFromFloat64(120), Category: "Sembako", MinStock: types.NewQuantityFromFloat64(30), RackLocation: "A-02"},
		{Name: "Gula Pasir", Unit: "kg", Quantity: types.NewQuantityFromFloat64(80), Category: "Sembako", MinStock: types.NewQuantityFromFloat64(20), RackLocation: "A-03"},
		{Name: "Sabun Cuci", Unit: "pcs", Quantity: types.NewQuantityFromFloat64(200), Category: "Kebersihan", MinStock: types.NewQuantityFromFloat64(40), RackLocation: "B-01"},
		{Name: "Masker", Unit: "box", Quantity: types.NewQuantityFromFloat64(60), Category: "Kesehatan", MinStock: types.NewQuantityFromFloat64(10), RackLocation: "C-02"},
	}

	res, err := engine.ReceiveBatch(ctx, lines, ledger.ReceiptFields{
		Supplier: "Seed Supplier",
		Note:     "initial demo stock",
	})
	if err != nil {
		return err
	}

	log.Infow("demo stock seeded", "trx_code", res.TrxCode, "lines", len(lines))
	return nil
}
