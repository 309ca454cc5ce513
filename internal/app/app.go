// Package app wires repositories and services on top of a Postgres pool. It
// is shared by the HTTP server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"money-mate/internal/jobs"
	"money-mate/internal/repository"
	"money-mate/internal/service"
	"money-mate/pkg/config"
	"money-mate/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	DB *pgxpool.Pool

	Users        *repository.UserRepository
	Messages     *repository.MessageRepository
	Transactions *repository.TransactionRepository

	Ingestion       *service.IngestionService
	Processing      *service.ProcessingService
	Status          *service.StatusService
	TransactionsSvc *service.TransactionService
	UserSvc         *service.UserService

	llm    *service.LLMService
	logger *zap.Logger
}

// New connects to the database, optionally migrates it and builds the
// services. publisher receives post-ingestion processing jobs and may be nil.
func New(ctx context.Context, cfg *config.Config, publisher jobs.Publisher, logger *zap.Logger) (*App, error) {
	db, err := postgres.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if _, err := postgres.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	a := &App{
		DB:           db,
		Users:        repository.NewUserRepository(db, logger),
		Messages:     repository.NewMessageRepository(db, logger),
		Transactions: repository.NewTransactionRepository(db, logger),
		logger:       logger,
	}

	var llm service.LLMCategorizer
	if cfg.GigaChat.APIKey != "" {
		a.llm, err = service.NewLLMService(ctx, &cfg.GigaChat, logger.Named("llm"))
		if err != nil {
			// keyword categories still work without the model
			logger.Warn("GigaChat unavailable, using keyword categories only", zap.Error(err))
		} else {
			llm = a.llm
		}
	}

	tx := postgres.NewTransactor(db, logger)
	gate := service.NewDeduplicationGate(a.Transactions)
	categorizer := service.NewCategoryService(llm, logger.Named("category"))

	a.Ingestion = service.NewIngestionService(a.Users, a.Messages, tx, publisher, cfg.Ingest.BatchSize, logger.Named("ingestion"))
	a.Processing = service.NewProcessingService(a.Messages, a.Transactions, a.Users, tx, gate, categorizer,
		cfg.Processing.BatchSize, cfg.Processing.ClaimLease, logger.Named("processing"))
	a.Status = service.NewStatusService(a.Messages)
	a.TransactionsSvc = service.NewTransactionService(a.Transactions, a.Messages, a.Users, tx, gate, categorizer, logger.Named("transactions"))
	a.UserSvc = service.NewUserService(a.Users, a.Transactions, logger.Named("users"))

	return a, nil
}

// ProcessJob is the jobs.JobHandler running a processing pass.
func (a *App) ProcessJob(ctx context.Context, job *jobs.ProcessMessagesJob) error {
	result, err := a.Processing.Process(ctx, service.ProcessRequest{Limit: job.Limit, UserID: job.UserID})
	if err != nil {
		return err
	}
	a.logger.Debug("Processing job done",
		zap.String("job_id", job.JobID),
		zap.String("reason", job.Reason),
		zap.Int("processed", result.Processed),
	)
	return nil
}

func (a *App) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	a.DB.Close()
}
