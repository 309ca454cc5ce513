package repository

import (
	"context"

	"money-mate/internal/models"
	"money-mate/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "account_number", "transaction_type", "category", "amount", "currency",
	"transaction_date", "description", "reference_id", "source_message_id", "created_at", "updated_at",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch writes transactions in one statement. A row whose
// (user_id, reference_id) already exists is skipped; the number inserted is
// returned.
func (r *TransactionRepository) InsertBatch(ctx context.Context, transactions []*models.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	sql, args, err := insertTransactionsQuery(transactions).ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func insertTransactionsQuery(transactions []*models.Transaction) squirrel.InsertBuilder {
	builder := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Suffix("ON CONFLICT (user_id, reference_id) WHERE reference_id IS NOT NULL DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(
			tx.ID, tx.UserID, tx.AccountNumber, tx.Type, tx.Category, tx.Amount, tx.Currency,
			tx.Date, tx.Description, tx.ReferenceID, tx.SourceMessageID, tx.CreatedAt, tx.UpdatedAt,
		)
	}
	return builder
}

// ExistingReferences reports which keys already have a stored transaction.
// The whole batch is resolved with one query.
func (r *TransactionRepository) ExistingReferences(ctx context.Context, keys []models.ReferenceKey) (map[models.ReferenceKey]bool, error) {
	existing := make(map[models.ReferenceKey]bool)
	if len(keys) == 0 {
		return existing, nil
	}

	sql, args, err := existingReferencesQuery(keys).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key models.ReferenceKey
		if err := rows.Scan(&key.UserID, &key.ReferenceID); err != nil {
			return nil, err
		}
		existing[key] = true
	}
	return existing, rows.Err()
}

func existingReferencesQuery(keys []models.ReferenceKey) squirrel.SelectBuilder {
	userIDs := make([]uuid.UUID, len(keys))
	refs := make([]string, len(keys))
	for i, k := range keys {
		userIDs[i] = k.UserID
		refs[i] = k.ReferenceID
	}

	return squirrel.Select("user_id", "reference_id").
		From("transactions").
		Where("(user_id, reference_id) IN (SELECT * FROM unnest(?::uuid[], ?::text[]))", userIDs, refs).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("transaction_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AccountNumber, &tx.Type, &tx.Category, &tx.Amount, &tx.Currency,
			&tx.Date, &tx.Description, &tx.ReferenceID, &tx.SourceMessageID, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
