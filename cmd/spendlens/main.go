package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendlens/internal/api"
	"spendlens/internal/api/handlers"
	"spendlens/internal/pipeline"
	"spendlens/internal/provider"
	"spendlens/internal/repository"
	"spendlens/internal/service"
	"spendlens/pkg/auth"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"
	"spendlens/pkg/postgres"
	"spendlens/pkg/storage"

	"go.uber.org/zap"
)

// @title SpendLens API
// @version 1.0
// @description Receipt-to-expense extraction service: upload a receipt image, get a committed expense or a prefilled manual-entry fallback.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@spendlens.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting SpendLens service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize blob storage
	blobStore, err := storage.NewS3Client(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize pipeline stages
	ingestService := service.NewIngestService(blobStore, receiptRepo, appLogger)
	recognizer := provider.NewVisionRecognizer(&cfg.Vision, appLogger)

	var extractor pipeline.Extractor
	switch cfg.Extractor.Provider {
	case "gigachat":
		gigachat, err := provider.NewGigaChatExtractor(ctx, &cfg.Extractor, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize extraction provider", zap.Error(err))
		}
		defer gigachat.Close()
		extractor = gigachat
	default:
		extractor = provider.NewOpenAIExtractor(&cfg.Extractor, appLogger)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	budgetService := service.NewBudgetService(userRepo, expenseRepo, &cfg.Budget, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, receiptRepo, budgetService, appLogger)

	orchestrator := pipeline.NewOrchestrator(
		ingestService,
		recognizer,
		extractor,
		expenseService,
		cfg.Vision.Timeout,
		cfg.Extractor.Timeout,
		appLogger,
	)

	receiptService := service.NewReceiptService(orchestrator, receiptRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	receiptHandler := handlers.NewReceiptHandler(receiptService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, receiptHandler, expenseHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
