package service

import (
	"context"
	"fmt"

	"money-mate/internal/models"
)

// DeduplicationGate drops candidate transactions whose reference id is
// already stored for the same user, or repeated earlier in the batch.
// Candidates without a reference id always pass.
type DeduplicationGate struct {
	transactions TransactionStore
}

func NewDeduplicationGate(transactions TransactionStore) *DeduplicationGate {
	return &DeduplicationGate{transactions: transactions}
}

// Filter preserves input order. The whole batch costs one lookup query, none
// when no candidate carries a reference.
func (g *DeduplicationGate) Filter(ctx context.Context, candidates []*models.Transaction) (fresh, duplicates []*models.Transaction, err error) {
	seen := make(map[models.ReferenceKey]bool, len(candidates))
	keys := make([]models.ReferenceKey, 0, len(candidates))
	for _, c := range candidates {
		if key, ok := referenceKey(c); ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	var stored map[models.ReferenceKey]bool
	if len(keys) > 0 {
		stored, err = g.transactions.ExistingReferences(ctx, keys)
		if err != nil {
			return nil, nil, fmt.Errorf("reference lookup: %w", err)
		}
	}

	accepted := make(map[models.ReferenceKey]bool, len(keys))
	for _, c := range candidates {
		key, ok := referenceKey(c)
		if !ok {
			fresh = append(fresh, c)
			continue
		}
		if stored[key] || accepted[key] {
			duplicates = append(duplicates, c)
			continue
		}
		accepted[key] = true
		fresh = append(fresh, c)
	}

	return fresh, duplicates, nil
}

func referenceKey(t *models.Transaction) (models.ReferenceKey, bool) {
	if t.ReferenceID == nil || *t.ReferenceID == "" {
		return models.ReferenceKey{}, false
	}
	return models.ReferenceKey{UserID: t.UserID, ReferenceID: *t.ReferenceID}, true
}
