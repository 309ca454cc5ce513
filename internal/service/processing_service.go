package service

import (
	"context"
	"time"

	"money-mate/internal/classifier"
	"money-mate/internal/extractor"
	"money-mate/internal/models"
	"money-mate/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const descriptionLength = 200

// categoryOrder fixes the order in which per-category updates are issued.
var categoryOrder = []models.MessageCategory{
	models.MessageCategoryTransaction,
	models.MessageCategorySecurityAlert,
	models.MessageCategoryOTP,
	models.MessageCategoryTelecom,
	models.MessageCategoryBalanceInquiry,
	models.MessageCategoryPromotional,
	models.MessageCategoryOther,
}

type ProcessRequest struct {
	// Limit caps the number of messages; zero means all pending ones.
	Limit  int
	UserID *uuid.UUID
}

type ProcessResult struct {
	Processed           int
	TransactionsCreated int
	DuplicatesFiltered  int
	Categories          map[models.MessageCategory]int
}

func (r *ProcessResult) add(o *ProcessResult) {
	r.Processed += o.Processed
	r.TransactionsCreated += o.TransactionsCreated
	r.DuplicatesFiltered += o.DuplicatesFiltered
	for c, n := range o.Categories {
		r.Categories[c] += n
	}
}

type ProcessingService struct {
	messages     MessageStore
	transactions TransactionStore
	users        UserStore
	tx           Transactor
	gate         *DeduplicationGate
	categorizer  Categorizer
	batchSize    int
	lease        time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewProcessingService(
	messages MessageStore,
	transactions TransactionStore,
	users UserStore,
	tx Transactor,
	gate *DeduplicationGate,
	categorizer Categorizer,
	batchSize int,
	lease time.Duration,
	logger *zap.Logger,
) *ProcessingService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	return &ProcessingService{
		messages:     messages,
		transactions: transactions,
		users:        users,
		tx:           tx,
		gate:         gate,
		categorizer:  categorizer,
		batchSize:    batchSize,
		lease:        lease,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Process runs one processing pass. Messages are claimed chunk by chunk so
// that concurrent passes never work the same rows; each chunk is marked
// processed in the same transaction that inserts its transactions.
func (s *ProcessingService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if req.Limit < 0 {
		return nil, validationError("limit must not be negative")
	}

	total := &ProcessResult{Categories: make(map[models.MessageCategory]int)}
	remaining := req.Limit

	for {
		size := s.batchSize
		if req.Limit > 0 && remaining < size {
			size = remaining
		}

		token := uuid.New()
		claimed, err := s.messages.Claim(ctx, repository.ClaimParams{
			Token:       token,
			Limit:       size,
			StaleBefore: s.now().Add(-s.lease),
			UserID:      req.UserID,
		})
		if err != nil {
			return total, persistenceError(err)
		}
		if len(claimed) == 0 {
			break
		}

		chunk, err := s.processChunk(ctx, token, claimed)
		if chunk != nil {
			total.add(chunk)
		}
		if err != nil {
			if relErr := s.messages.Release(context.WithoutCancel(ctx), token); relErr != nil {
				s.logger.Warn("Failed to release message claim", zap.Error(relErr))
			}
			return total, persistenceError(err)
		}

		if req.Limit > 0 {
			remaining -= len(claimed)
			if remaining <= 0 {
				break
			}
		}
		if len(claimed) < size {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	if total.Processed > 0 {
		s.logger.Info("Processing pass finished",
			zap.Int("processed", total.Processed),
			zap.Int("transactions_created", total.TransactionsCreated),
			zap.Int("duplicates_filtered", total.DuplicatesFiltered),
		)
	}
	return total, nil
}

type balanceUpdate struct {
	messageID uuid.UUID
	at        time.Time
	balance   decimal.Decimal
}

// messagePlan is the outcome of classifying and extracting one message,
// before anything is written.
type messagePlan struct {
	message     *models.Message
	category    models.MessageCategory
	transaction *models.Transaction
	balance     *decimal.Decimal
}

func (s *ProcessingService) plan(ctx context.Context, m *models.Message) messagePlan {
	p := messagePlan{message: m, category: classifier.Classify(m.Body)}

	switch p.category {
	case models.MessageCategoryTransaction:
		fields := extractor.Extract(m.Body)
		if fields.Usable() {
			p.transaction = s.buildTransaction(ctx, m, fields)
		}
		p.balance = fields.Balance
	case models.MessageCategoryBalanceInquiry:
		p.balance = extractor.ExtractBalance(m.Body)
	}
	return p
}

// processChunk classifies and extracts outside the database transaction,
// then commits marking, dedup and insert atomically. When storage rejects
// the chunk its messages are committed one by one, and a message that still
// fails is marked processed without its transaction so it cannot block the
// pass again.
func (s *ProcessingService) processChunk(ctx context.Context, token uuid.UUID, claimed []*models.Message) (*ProcessResult, error) {
	plans := make([]messagePlan, len(claimed))
	for i, m := range claimed {
		plans[i] = s.plan(ctx, m)
	}

	result, err := s.commit(ctx, token, plans)
	if err == nil || ctx.Err() != nil {
		return result, err
	}

	s.logger.Warn("Chunk rejected by storage, committing messages one by one",
		zap.Int("messages", len(plans)),
		zap.Error(err),
	)

	total := &ProcessResult{Categories: make(map[models.MessageCategory]int)}
	for _, p := range plans {
		r, err := s.commit(ctx, token, []messagePlan{p})
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			s.logger.Warn("Message marked processed without its transaction",
				zap.String("message_id", p.message.ID.String()),
				zap.Error(err),
			)
			p.transaction, p.balance = nil, nil
			if r, err = s.commit(ctx, token, []messagePlan{p}); err != nil {
				return total, err
			}
		}
		total.add(r)
	}
	return total, nil
}

func (s *ProcessingService) commit(ctx context.Context, token uuid.UUID, plans []messagePlan) (*ProcessResult, error) {
	byCategory := make(map[models.MessageCategory][]uuid.UUID)
	var candidates []*models.Transaction
	latestBalance := make(map[uuid.UUID]balanceUpdate)

	for _, p := range plans {
		byCategory[p.category] = append(byCategory[p.category], p.message.ID)
		if p.transaction != nil {
			candidates = append(candidates, p.transaction)
		}
		trackBalance(latestBalance, p.message, p.balance)
	}

	result := &ProcessResult{Categories: make(map[models.MessageCategory]int)}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		*result = ProcessResult{Categories: make(map[models.MessageCategory]int)}
		marked := make(map[uuid.UUID]bool, len(plans))

		for _, category := range categoryOrder {
			ids := byCategory[category]
			if len(ids) == 0 {
				continue
			}
			c := category
			updated, err := s.messages.MarkProcessed(ctx, repository.MarkParams{IDs: ids, Category: &c, Claim: &token})
			if err != nil {
				return err
			}
			for _, id := range updated {
				marked[id] = true
			}
			result.Categories[category] += len(updated)
			result.Processed += len(updated)
		}

		// a message whose lease expired and was taken over is left to the new owner
		owned := candidates[:0:0]
		for _, c := range candidates {
			if marked[*c.SourceMessageID] {
				owned = append(owned, c)
			}
		}

		fresh, duplicates, err := s.gate.Filter(ctx, owned)
		if err != nil {
			return err
		}
		inserted, err := s.transactions.InsertBatch(ctx, fresh)
		if err != nil {
			return err
		}
		result.TransactionsCreated = int(inserted)
		result.DuplicatesFiltered = len(duplicates) + len(fresh) - int(inserted)

		for userID, u := range latestBalance {
			if !marked[u.messageID] {
				continue
			}
			if err := s.users.UpdateBalance(ctx, userID, u.balance, u.at); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ProcessingService) buildTransaction(ctx context.Context, m *models.Message, f extractor.Fields) *models.Transaction {
	now := s.now()
	account := models.UnknownAccountNumber
	if f.AccountNumber != nil {
		account = *f.AccountNumber
	}
	description := truncate(m.Body, descriptionLength)
	sourceID := m.ID

	return &models.Transaction{
		ID:              uuid.New(),
		UserID:          m.UserID,
		AccountNumber:   account,
		Type:            *f.TransactionType,
		Category:        s.categorizer.Categorize(ctx, m.Body),
		Amount:          *f.Amount,
		Currency:        models.DefaultCurrency,
		Date:            m.ReceivedAt,
		Description:     description,
		ReferenceID:     f.ReferenceID,
		SourceMessageID: &sourceID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func trackBalance(latest map[uuid.UUID]balanceUpdate, m *models.Message, balance *decimal.Decimal) {
	if balance == nil {
		return
	}
	if cur, ok := latest[m.UserID]; ok && !m.ReceivedAt.After(cur.at) {
		return
	}
	latest[m.UserID] = balanceUpdate{messageID: m.ID, at: m.ReceivedAt, balance: *balance}
}

// ListUnprocessed returns pending messages oldest first. A non-positive or
// oversized limit means 1000.
func (s *ProcessingService) ListUnprocessed(ctx context.Context, limit int, userID *uuid.UUID) ([]*models.Message, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	messages, err := s.messages.ListUnprocessed(ctx, limit, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return messages, nil
}
