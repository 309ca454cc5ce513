package repository

import (
	"context"
	"strings"
	"time"

	"money-mate/internal/models"
	"money-mate/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var messageColumns = []string{"id", "user_id", "sender", "message_body", "status", "received_at", "processed", "category", "created_at"}

type MessageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMessageRepository(db *pgxpool.Pool, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		logger: logger,
	}
}

// FindExisting returns which of keys are already stored for the user, in a
// single query.
func (r *MessageRepository) FindExisting(ctx context.Context, userID uuid.UUID, keys []models.MessageKey) (map[models.MessageKey]bool, error) {
	existing := make(map[models.MessageKey]bool)
	if len(keys) == 0 {
		return existing, nil
	}

	sql, args, err := findExistingQuery(userID, keys).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key models.MessageKey
		if err := rows.Scan(&key.Sender, &key.Body); err != nil {
			return nil, err
		}
		existing[key] = true
	}

	return existing, rows.Err()
}

func findExistingQuery(userID uuid.UUID, keys []models.MessageKey) squirrel.SelectBuilder {
	senders := make([]string, len(keys))
	bodies := make([]string, len(keys))
	for i, k := range keys {
		senders[i] = k.Sender
		bodies[i] = k.Body
	}

	return squirrel.Select("sender", "message_body").
		From("messages").
		Where(squirrel.Eq{"user_id": userID}).
		Where("(sender, message_body) IN (SELECT * FROM unnest(?::text[], ?::text[]))", senders, bodies).
		PlaceholderFormat(squirrel.Dollar)
}

// InsertBatch inserts messages in one statement. Rows that collide with the
// (user_id, sender, message_body) constraint are skipped; the number actually
// inserted is returned.
func (r *MessageRepository) InsertBatch(ctx context.Context, messages []*models.Message) (int64, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	sql, args, err := insertMessagesQuery(messages).ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func insertMessagesQuery(messages []*models.Message) squirrel.InsertBuilder {
	builder := squirrel.Insert("messages").
		Columns("id", "user_id", "sender", "message_body", "status", "received_at", "processed", "created_at").
		Suffix("ON CONFLICT (user_id, sender, message_body) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, m := range messages {
		builder = builder.Values(m.ID, m.UserID, m.Sender, m.Body, m.Status, m.ReceivedAt, m.Processed, m.CreatedAt)
	}
	return builder
}

type ClaimParams struct {
	Token uuid.UUID
	Limit int
	// Claims older than StaleBefore are considered abandoned.
	StaleBefore time.Time
	UserID      *uuid.UUID
}

// Claim atomically leases up to Limit unprocessed messages, oldest first.
// Rows locked by a concurrent claim are skipped rather than waited on.
func (r *MessageRepository) Claim(ctx context.Context, p ClaimParams) ([]*models.Message, error) {
	sql, args, err := claimQuery(p, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func claimQuery(p ClaimParams, now time.Time) (string, []any, error) {
	candidates := squirrel.Select("id").
		From("messages").
		Where(squirrel.Eq{"processed": false}).
		Where(squirrel.Or{
			squirrel.Eq{"claim_id": nil},
			squirrel.Lt{"claimed_at": p.StaleBefore},
		}).
		OrderBy("received_at", "id").
		Limit(uint64(p.Limit)).
		Suffix("FOR UPDATE SKIP LOCKED")
	if p.UserID != nil {
		candidates = candidates.Where(squirrel.Eq{"user_id": *p.UserID})
	}

	return squirrel.Update("messages").
		Set("claim_id", p.Token).
		Set("claimed_at", now).
		Where(squirrel.Expr("id IN (?)", candidates)).
		Suffix("RETURNING " + strings.Join(messageColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Release drops a claim so the messages can be picked up again immediately.
func (r *MessageRepository) Release(ctx context.Context, token uuid.UUID) error {
	sql, args, err := squirrel.Update("messages").
		Set("claim_id", nil).
		Set("claimed_at", nil).
		Where(squirrel.Eq{"claim_id": token, "processed": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	return err
}

type MarkParams struct {
	IDs []uuid.UUID
	// Category is stored when set.
	Category *models.MessageCategory
	// Claim restricts the update to rows still leased under this token.
	Claim *uuid.UUID
	// UserID restricts the update to one user's messages.
	UserID *uuid.UUID
}

// MarkProcessed flips processed for the given messages and returns the ids
// that were actually updated.
func (r *MessageRepository) MarkProcessed(ctx context.Context, p MarkParams) ([]uuid.UUID, error) {
	if len(p.IDs) == 0 {
		return nil, nil
	}

	sql, args, err := markProcessedQuery(p).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marked []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		marked = append(marked, id)
	}
	return marked, rows.Err()
}

func markProcessedQuery(p MarkParams) squirrel.UpdateBuilder {
	builder := squirrel.Update("messages").
		Set("processed", true).
		Set("claim_id", nil).
		Set("claimed_at", nil).
		Where("id = ANY(?)", p.IDs).
		Where(squirrel.Eq{"processed": false}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	if p.Category != nil {
		builder = builder.Set("category", *p.Category)
	}
	if p.Claim != nil {
		builder = builder.Where(squirrel.Eq{"claim_id": *p.Claim})
	}
	if p.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *p.UserID})
	}
	return builder
}

// Owners returns the owning user of each stored message among ids.
func (r *MessageRepository) Owners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	owners := make(map[uuid.UUID]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	sql, args, err := squirrel.Select("id", "user_id").
		From("messages").
		Where("id = ANY(?)", ids).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, userID uuid.UUID
		if err := rows.Scan(&id, &userID); err != nil {
			return nil, err
		}
		owners[id] = userID
	}
	return owners, rows.Err()
}

func (r *MessageRepository) ListUnprocessed(ctx context.Context, limit int, userID *uuid.UUID) ([]*models.Message, error) {
	query := squirrel.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"processed": false}).
		OrderBy("received_at", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if userID != nil {
		query = query.Where(squirrel.Eq{"user_id": *userID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// Count returns how many messages exist, optionally only processed ones.
func (r *MessageRepository) Count(ctx context.Context, userID *uuid.UUID, onlyProcessed bool) (int64, error) {
	sql, args, err := countQuery(userID, onlyProcessed).ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func countQuery(userID *uuid.UUID, onlyProcessed bool) squirrel.SelectBuilder {
	query := squirrel.Select("COUNT(*)").From("messages").PlaceholderFormat(squirrel.Dollar)
	if userID != nil {
		query = query.Where(squirrel.Eq{"user_id": *userID})
	}
	if onlyProcessed {
		query = query.Where(squirrel.Eq{"processed": true})
	}
	return query
}

func scanMessages(rows pgx.Rows) ([]*models.Message, error) {
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Sender, &m.Body, &m.Status, &m.ReceivedAt, &m.Processed, &m.Category, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}
