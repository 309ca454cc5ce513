package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

const (
	DefaultCurrency      = "INR"
	UnknownAccountNumber = "unknown"

	// Column widths of the transactions table.
	MaxAccountNumberLength = 64
	MaxReferenceIDLength   = 64
	MaxCategoryLength      = 64
)

// MaxAmount is the exclusive upper bound of a storable amount (NUMERIC(14,2)).
var MaxAmount = decimal.New(1, 12)

type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	AccountNumber   string          `db:"account_number"`
	Type            TransactionType `db:"transaction_type"`
	Category        string          `db:"category"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	Date            time.Time       `db:"transaction_date"`
	Description     string          `db:"description"`
	ReferenceID     *string         `db:"reference_id"`
	SourceMessageID *uuid.UUID      `db:"source_message_id"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// ReferenceKey is the uniqueness key enforced for transactions that carry a
// bank reference.
type ReferenceKey struct {
	UserID      uuid.UUID
	ReferenceID string
}
