package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an account holder. BalanceAt is when the bank quoted AccountBalance.
type User struct {
	ID             uuid.UUID           `db:"id"`
	Username       string              `db:"username"`
	Email          string              `db:"email"`
	AccountBalance decimal.NullDecimal `db:"account_balance"`
	BalanceAt      *time.Time          `db:"balance_at"`
	CreatedAt      time.Time           `db:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}
