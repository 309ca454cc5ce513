package repository

import (
	"context"
	"errors"
	"time"

	"money-mate/internal/models"
	"money-mate/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create is used by operator tooling; accounts are normally provisioned by
// the auth service.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := squirrel.Insert("users").
		Columns("id", "username", "email", "account_balance", "balance_at", "created_at", "updated_at").
		Values(user.ID, user.Username, user.Email, user.AccountBalance, user.BalanceAt, user.CreatedAt, user.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := squirrel.Select("id", "username", "email", "account_balance", "balance_at", "created_at", "updated_at").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = postgres.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.AccountBalance, &user.BalanceAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	sql, args, err := existsQuery(id).ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func existsQuery(id uuid.UUID) squirrel.SelectBuilder {
	inner := squirrel.Select("1").From("users").Where(squirrel.Eq{"id": id})
	return squirrel.Select().Column(squirrel.Expr("EXISTS(?)", inner)).PlaceholderFormat(squirrel.Dollar)
}

// UpdateBalance stores a balance quoted by the bank at the given time. A
// quote older than the stored one is ignored, as is an unknown user.
func (r *UserRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, at time.Time) error {
	sql, args, err := updateBalanceQuery(id, balance, at, time.Now().UTC()).ToSql()
	if err != nil {
		return err
	}

	_, err = postgres.Conn(ctx, r.db).Exec(ctx, sql, args...)
	return err
}

func updateBalanceQuery(id uuid.UUID, balance decimal.Decimal, at, now time.Time) squirrel.UpdateBuilder {
	return squirrel.Update("users").
		Set("account_balance", balance).
		Set("balance_at", at).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"balance_at": nil},
			squirrel.LtOrEq{"balance_at": at},
		}).
		PlaceholderFormat(squirrel.Dollar)
}
