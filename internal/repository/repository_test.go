package repository

import (
	"strings"
	"testing"
	"time"

	"money-mate/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExistingQueryIsSingleBulkLookup(t *testing.T) {
	userID := uuid.New()
	keys := []models.MessageKey{{Sender: "HDFC", Body: "a"}, {Sender: "ICICI", Body: "b"}, {Sender: "SBI", Body: "c"}}

	sql, args, err := findExistingQuery(userID, keys).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT sender, message_body FROM messages WHERE user_id = $1 AND (sender, message_body) IN (SELECT * FROM unnest($2::text[], $3::text[]))", sql)
	require.Len(t, args, 3)
	assert.Equal(t, []string{"HDFC", "ICICI", "SBI"}, args[1])
	assert.Equal(t, []string{"a", "b", "c"}, args[2])
}

func TestInsertMessagesQuerySkipsConflicts(t *testing.T) {
	now := time.Now()
	msgs := []*models.Message{
		{ID: uuid.New(), UserID: uuid.New(), Sender: "A", Body: "x", Status: models.MessageStatusReceived, ReceivedAt: now, CreatedAt: now},
		{ID: uuid.New(), UserID: uuid.New(), Sender: "B", Body: "y", Status: models.MessageStatusSent, ReceivedAt: now, CreatedAt: now},
	}

	sql, args, err := insertMessagesQuery(msgs).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO messages (id,user_id,sender,message_body,status,received_at,processed,created_at) VALUES"))
	assert.True(t, strings.HasSuffix(sql, "ON CONFLICT (user_id, sender, message_body) DO NOTHING"))
	assert.Contains(t, sql, "$16")
	assert.Len(t, args, 16)
}

func TestClaimQuery(t *testing.T) {
	userID := uuid.New()
	token := uuid.New()
	stale := time.Now().Add(-5 * time.Minute)

	sql, args, err := claimQuery(ClaimParams{Token: token, Limit: 50, StaleBefore: stale, UserID: &userID}, time.Now())
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE messages SET claim_id = $1, claimed_at = $2 WHERE id IN (SELECT id FROM messages WHERE processed = $3 AND (claim_id IS NULL OR claimed_at < $4) AND user_id = $5 ORDER BY received_at, id LIMIT 50 FOR UPDATE SKIP LOCKED) RETURNING id, user_id, sender, message_body, status, received_at, processed, category, created_at",
		sql)
	require.Len(t, args, 5)
	// squirrel resolves driver.Valuer arguments, so uuids arrive as strings
	assert.Equal(t, token.String(), args[0])
	assert.Equal(t, false, args[2])
	assert.Equal(t, userID.String(), args[4])
}

func TestClaimQueryWithoutUser(t *testing.T) {
	sql, args, err := claimQuery(ClaimParams{Token: uuid.New(), Limit: 10, StaleBefore: time.Now()}, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, sql, "user_id =")
	assert.Len(t, args, 4)
}

func TestMarkProcessedQuery(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	category := models.MessageCategoryTransaction
	claim := uuid.New()

	sql, args, err := markProcessedQuery(MarkParams{IDs: ids, Category: &category, Claim: &claim}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE messages SET processed = $1, claim_id = $2, claimed_at = $3, category = $4 WHERE id = ANY($5) AND processed = $6 AND claim_id = $7 RETURNING id",
		sql)
	assert.Equal(t, ids, args[4])
	assert.Equal(t, claim.String(), args[6])

	sql, _, err = markProcessedQuery(MarkParams{IDs: ids}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "category")
	assert.NotContains(t, sql, "AND claim_id")
	assert.NotContains(t, sql, "user_id")
}

func TestMarkProcessedQueryScopedToUser(t *testing.T) {
	userID := uuid.New()

	sql, args, err := markProcessedQuery(MarkParams{IDs: []uuid.UUID{uuid.New()}, UserID: &userID}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE messages SET processed = $1, claim_id = $2, claimed_at = $3 WHERE id = ANY($4) AND processed = $5 AND user_id = $6 RETURNING id",
		sql)
	assert.Equal(t, userID.String(), args[5])
}

func TestUpdateBalanceQueryIgnoresOlderQuotes(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Now()

	sql, args, err := updateBalanceQuery(uuid.New(), decimal.RequireFromString("5000"), at, now).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE users SET account_balance = $1, balance_at = $2, updated_at = $3 WHERE id = $4 AND (balance_at IS NULL OR balance_at <= $5)",
		sql)
	require.Len(t, args, 5)
	assert.Equal(t, at, args[4])
}

func TestCountQuery(t *testing.T) {
	sql, args, err := countQuery(nil, false).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM messages", sql)
	assert.Empty(t, args)

	userID := uuid.New()
	sql, args, err = countQuery(&userID, true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM messages WHERE user_id = $1 AND processed = $2", sql)
	assert.Len(t, args, 2)
}

func TestExistingReferencesQuery(t *testing.T) {
	u := uuid.New()
	keys := []models.ReferenceKey{{UserID: u, ReferenceID: "9988"}, {UserID: u, ReferenceID: "7766"}}

	sql, args, err := existingReferencesQuery(keys).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT user_id, reference_id FROM transactions WHERE (user_id, reference_id) IN (SELECT * FROM unnest($1::uuid[], $2::text[]))", sql)
	assert.Equal(t, []uuid.UUID{u, u}, args[0])
	assert.Equal(t, []string{"9988", "7766"}, args[1])
}

func TestInsertTransactionsQuery(t *testing.T) {
	ref := "9988"
	tx := &models.Transaction{
		ID: uuid.New(), UserID: uuid.New(), AccountNumber: "123", Type: models.TransactionTypeDebit,
		Category: models.SpendingOthers, Amount: decimal.RequireFromString("1500"), Currency: models.DefaultCurrency,
		Date: time.Now(), ReferenceID: &ref,
	}

	sql, args, err := insertTransactionsQuery([]*models.Transaction{tx}).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(sql, "ON CONFLICT (user_id, reference_id) WHERE reference_id IS NOT NULL DO NOTHING"))
	assert.Len(t, args, len(transactionColumns))
}

func TestExistsQuery(t *testing.T) {
	sql, args, err := existsQuery(uuid.New()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", sql)
	assert.Len(t, args, 1)
}
