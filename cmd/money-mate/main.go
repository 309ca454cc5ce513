package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"money-mate/internal/api"
	"money-mate/internal/api/handlers"
	"money-mate/internal/app"
	"money-mate/internal/jobs"
	"money-mate/internal/scheduler"
	"money-mate/pkg/auth"
	"money-mate/pkg/config"
	"money-mate/pkg/logger"

	"go.uber.org/zap"
)

// @title Money Mate API
// @version 1.0
// @description SMS ingestion and transaction extraction for the Money Mate finance app

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Money Mate ingestion service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := jobs.NewQueue(cfg.Processing.QueueSize, cfg.Processing.Workers, appLogger.Named("jobs"))

	a, err := app.New(ctx, cfg, queue, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// workers outlive the signal context so that Stop can drain them
	if err := queue.Start(context.Background(), a.ProcessJob); err != nil {
		appLogger.Fatal("Failed to start job queue", zap.Error(err))
	}

	ticker := scheduler.New(cfg.Processing.Interval, func(ctx context.Context) error {
		return queue.PublishProcessMessages(ctx, &jobs.ProcessMessagesJob{Reason: "scheduled"})
	}, appLogger.Named("scheduler"))
	ticker.Start(ctx)

	routerCfg := api.RouterConfig{ReadTimeout: cfg.Server.ReadTimeout}
	if cfg.JWT.Required {
		routerCfg.Validator = auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)
	}

	h := api.Handlers{
		Messages:     handlers.NewMessageHandler(a.Ingestion, a.Processing, a.Status, cfg.Ingest.Timeout, appLogger.Named("messages")),
		Transactions: handlers.NewTransactionHandler(a.TransactionsSvc, appLogger.Named("transactions")),
		Users:        handlers.NewUserHandler(a.UserSvc, appLogger.Named("users")),
	}
	server := api.SetupRouter(h, routerCfg, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	ticker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := queue.Stop(shutdownCtx); err != nil {
		appLogger.Error("Job queue shutdown error", zap.Error(err))
	}
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
