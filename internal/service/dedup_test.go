package service

import (
	"context"
	"testing"

	"money-mate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(userID uuid.UUID, ref *string) *models.Transaction {
	return &models.Transaction{ID: uuid.New(), UserID: userID, ReferenceID: ref}
}

type failingReferences struct{ memTransactions }

func (failingReferences) ExistingReferences(context.Context, []models.ReferenceKey) (map[models.ReferenceKey]bool, error) {
	return nil, errBoom
}

func TestDeduplicationGateFilter(t *testing.T) {
	db := newMemDB()
	userID := db.addUser()
	other := db.addUser()
	db.transactions = append(db.transactions, models.Transaction{ID: uuid.New(), UserID: userID, ReferenceID: strPtr("111")})

	gate := NewDeduplicationGate(memTransactions{db})

	in := []*models.Transaction{
		candidate(userID, strPtr("111")), // stored already
		candidate(userID, nil),
		candidate(userID, strPtr("222")),
		candidate(userID, strPtr("222")), // repeated in batch
		candidate(other, strPtr("111")),  // same reference, other user
		candidate(userID, nil),
	}

	fresh, duplicates, err := gate.Filter(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []*models.Transaction{in[1], in[2], in[4], in[5]}, fresh)
	assert.Equal(t, []*models.Transaction{in[0], in[3]}, duplicates)
	assert.Equal(t, 1, db.referenceCalls, "one bulk lookup for the whole batch")
}

func TestDeduplicationGateSkipsLookupWithoutReferences(t *testing.T) {
	db := newMemDB()
	userID := db.addUser()
	gate := NewDeduplicationGate(memTransactions{db})

	in := []*models.Transaction{candidate(userID, nil), candidate(userID, strPtr(""))}
	fresh, duplicates, err := gate.Filter(context.Background(), in)
	require.NoError(t, err)

	assert.Len(t, fresh, 2)
	assert.Empty(t, duplicates)
	assert.Zero(t, db.referenceCalls)
}

func TestDeduplicationGateLookupError(t *testing.T) {
	gate := NewDeduplicationGate(failingReferences{})
	_, _, err := gate.Filter(context.Background(), []*models.Transaction{candidate(uuid.New(), strPtr("1"))})
	assert.ErrorIs(t, err, errBoom)
}
