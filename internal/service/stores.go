package service

import (
	"context"
	"time"

	"money-mate/internal/models"
	"money-mate/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MessageStore interface {
	FindExisting(ctx context.Context, userID uuid.UUID, keys []models.MessageKey) (map[models.MessageKey]bool, error)
	InsertBatch(ctx context.Context, messages []*models.Message) (int64, error)
	Claim(ctx context.Context, p repository.ClaimParams) ([]*models.Message, error)
	Release(ctx context.Context, token uuid.UUID) error
	MarkProcessed(ctx context.Context, p repository.MarkParams) ([]uuid.UUID, error)
	Owners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	ListUnprocessed(ctx context.Context, limit int, userID *uuid.UUID) ([]*models.Message, error)
	Count(ctx context.Context, userID *uuid.UUID, onlyProcessed bool) (int64, error)
}

type TransactionStore interface {
	InsertBatch(ctx context.Context, transactions []*models.Transaction) (int64, error)
	ExistingReferences(ctx context.Context, keys []models.ReferenceKey) (map[models.ReferenceKey]bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// UpdateBalance keeps the newest quote: one older than at is ignored.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, at time.Time) error
}

// Transactor runs fn in one database transaction; stores called with the
// ctx handed to fn take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
