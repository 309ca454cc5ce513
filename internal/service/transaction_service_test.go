package service

import (
	"context"
	"strings"
	"testing"

	"money-mate/internal/dto"
	"money-mate/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkTx(userID uuid.UUID, amount int64, ref *string) dto.BulkTransaction {
	return dto.BulkTransaction{
		UserID:          userID.String(),
		TransactionType: "debit",
		Amount:          decimal.NewFromInt(amount),
		TransactionDate: "2024-03-01T10:00:00Z",
		Description:     "Paid to Uber",
		ReferenceID:     ref,
	}
}

func TestBulkCreate(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()
	ingest(t, env, userID, sms("first"), sms("second"))
	msgs := env.db.messageList()

	result, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions: []dto.BulkTransaction{
			bulkTx(userID, 100, strPtr("R1")),
			bulkTx(userID, 100, strPtr("R1")),
			bulkTx(userID, 50, nil),
		},
		ProcessedMessageIDs:       []string{msgs[0].ID.String()},
		LegacyProcessedMessageIDs: []string{msgs[1].ID.String()},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, &BulkCreateResult{TransactionsCreated: 2, DuplicatesFiltered: 1, MessagesProcessed: 2}, result)

	txs := env.db.transactionList()
	require.Len(t, txs, 2)
	assert.Equal(t, models.SpendingTransport, txs[0].Category)
	assert.Equal(t, models.DefaultCurrency, txs[0].Currency)
	assert.Equal(t, models.UnknownAccountNumber, txs[0].AccountNumber)

	for _, m := range env.db.messageList() {
		assert.True(t, m.Processed)
	}
}

func TestBulkCreateValidatesEverythingFirst(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()

	bad := bulkTx(userID, 0, nil)
	_, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions: []dto.BulkTransaction{bulkTx(userID, 10, nil), bad},
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, env.db.transactionList())
}

func TestBulkCreateRejections(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()

	withType := bulkTx(userID, 10, nil)
	withType.TransactionType = "refund"
	withCurrency := bulkTx(userID, 10, nil)
	withCurrency.Currency = "RUPEE"
	withDate := bulkTx(userID, 10, nil)
	withDate.TransactionDate = ""
	withHugeAmount := bulkTx(userID, 1_000_000_000_000, nil)
	withLongRef := bulkTx(userID, 10, strPtr(strings.Repeat("R", 65)))
	withLongAccount := bulkTx(userID, 10, nil)
	withLongAccount.AccountNumber = strings.Repeat("1", 65)

	tests := []struct {
		name string
		req  dto.BulkCreateRequest
		want error
	}{
		{"empty", dto.BulkCreateRequest{}, ErrValidation},
		{"bad message id", dto.BulkCreateRequest{ProcessedMessageIDs: []string{"42"}}, ErrValidation},
		{"bad type", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withType}}, ErrValidation},
		{"bad currency", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withCurrency}}, ErrValidation},
		{"missing date", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withDate}}, ErrValidation},
		{"amount too large", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withHugeAmount}}, ErrValidation},
		{"reference too long", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withLongRef}}, ErrValidation},
		{"account too long", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{withLongAccount}}, ErrValidation},
		{"unknown user", dto.BulkCreateRequest{Transactions: []dto.BulkTransaction{bulkTx(uuid.New(), 10, nil)}}, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.transaction.BulkCreate(context.Background(), tt.req, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBulkCreateRollsBack(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()
	ingest(t, env, userID, sms("first"))
	env.db.failTxInsert = errBoom

	_, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions:        []dto.BulkTransaction{bulkTx(userID, 10, nil)},
		ProcessedMessageIDs: []string{env.db.messageList()[0].ID.String()},
	}, nil)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.False(t, env.db.messageList()[0].Processed)
}

func TestBulkCreateOnlyMarksMessages(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()
	ingest(t, env, userID, sms("first"))

	result, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		ProcessedMessageIDs: []string{env.db.messageList()[0].ID.String(), uuid.NewString()},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MessagesProcessed)
	assert.Zero(t, result.TransactionsCreated)
}

func TestBulkCreateWithOwnerRejectsForeignMessages(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	owner := env.db.addUser()
	other := env.db.addUser()
	ingest(t, env, owner, sms("mine"))
	ingest(t, env, other, sms("theirs"))

	var mine, theirs models.Message
	for _, m := range env.db.messageList() {
		if m.UserID == owner {
			mine = m
		} else {
			theirs = m
		}
	}

	_, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		ProcessedMessageIDs: []string{mine.ID.String(), theirs.ID.String()},
	}, &owner)
	assert.ErrorIs(t, err, ErrForbidden)
	for _, m := range env.db.messageList() {
		assert.False(t, m.Processed, "nothing is marked when any message is foreign")
	}

	// the other user's message still yields its transaction
	env.db.mu.Lock()
	for i := range env.db.messages {
		if env.db.messages[i].ID == theirs.ID {
			env.db.messages[i].Body = "Rs.250 debited from a/c XX555 via UPI"
		}
	}
	env.db.mu.Unlock()
	result, err := env.processing.Process(context.Background(), ProcessRequest{UserID: &other})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TransactionsCreated)
}

func TestBulkCreateWithOwner(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	owner := env.db.addUser()
	other := env.db.addUser()
	ingest(t, env, owner, sms("mine"))
	msg := env.db.messageList()[0]

	result, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions:        []dto.BulkTransaction{bulkTx(owner, 10, nil)},
		ProcessedMessageIDs: []string{msg.ID.String()},
	}, &owner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MessagesProcessed)
	assert.Equal(t, 1, result.TransactionsCreated)

	_, err = env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions: []dto.BulkTransaction{bulkTx(other, 10, nil)},
	}, &owner)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListTransactions(t *testing.T) {
	env := newTestEnv(t, 10, 10)
	userID := env.db.addUser()

	older := bulkTx(userID, 10, nil)
	older.TransactionDate = "2024-01-01"
	_, err := env.transaction.BulkCreate(context.Background(), dto.BulkCreateRequest{
		Transactions: []dto.BulkTransaction{older, bulkTx(userID, 20, nil)},
	}, nil)
	require.NoError(t, err)

	list, err := env.transaction.List(context.Background(), userID, 0, -5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, decimal.NewFromInt(20).Equal(list[0].Amount), "newest first")
}
