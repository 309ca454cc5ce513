package service

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	db          *memDB
	publisher   *recordingPublisher
	ingestion   *IngestionService
	processing  *ProcessingService
	status      *StatusService
	transaction *TransactionService
}

func newTestEnv(t *testing.T, ingestBatch, processBatch int) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	db := newMemDB()
	publisher := &recordingPublisher{}

	messages := memMessages{db}
	transactions := memTransactions{db}
	users := memUsers{db}
	gate := NewDeduplicationGate(transactions)
	categorizer := NewCategoryService(nil, logger)

	return &testEnv{
		db:          db,
		publisher:   publisher,
		ingestion:   NewIngestionService(users, messages, db, publisher, ingestBatch, logger),
		processing:  NewProcessingService(messages, transactions, users, db, gate, categorizer, processBatch, time.Minute, logger),
		status:      NewStatusService(messages),
		transaction: NewTransactionService(transactions, messages, users, db, gate, categorizer, logger),
	}
}

func strPtr(s string) *string { return &s }
