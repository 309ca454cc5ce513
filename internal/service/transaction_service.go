package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"money-mate/internal/dto"
	"money-mate/internal/models"
	"money-mate/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BulkCreateResult struct {
	TransactionsCreated int
	DuplicatesFiltered  int
	MessagesProcessed   int
}

type TransactionService struct {
	transactions TransactionStore
	messages     MessageStore
	users        UserStore
	tx           Transactor
	gate         *DeduplicationGate
	categorizer  Categorizer
	logger       *zap.Logger
	now          func() time.Time
}

func NewTransactionService(
	transactions TransactionStore,
	messages MessageStore,
	users UserStore,
	tx Transactor,
	gate *DeduplicationGate,
	categorizer Categorizer,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		messages:     messages,
		users:        users,
		tx:           tx,
		gate:         gate,
		categorizer:  categorizer,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// BulkCreate stores transactions produced outside this service and marks
// their source messages processed, all in one transaction. Every entry is
// validated before anything is written. A non-nil owner confines the request
// to that user's transactions and messages.
func (s *TransactionService) BulkCreate(ctx context.Context, req dto.BulkCreateRequest, owner *uuid.UUID) (*BulkCreateResult, error) {
	rawIDs := req.MessageIDs()
	if len(req.Transactions) == 0 && len(rawIDs) == 0 {
		return nil, validationError("transactions or processed_message_ids are required")
	}

	messageIDs := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationError(fmt.Sprintf("invalid message id %q", raw))
		}
		messageIDs = append(messageIDs, id)
	}

	candidates := make([]*models.Transaction, 0, len(req.Transactions))
	users := make(map[uuid.UUID]bool)
	for i, in := range req.Transactions {
		t, err := s.buildTransaction(ctx, in)
		if err != nil {
			return nil, validationError(fmt.Sprintf("transactions[%d]: %v", i, err))
		}
		if owner != nil && t.UserID != *owner {
			return nil, ErrForbidden
		}
		candidates = append(candidates, t)
		users[t.UserID] = true
	}

	if owner != nil && len(messageIDs) > 0 {
		owners, err := s.messages.Owners(ctx, messageIDs)
		if err != nil {
			return nil, persistenceError(err)
		}
		for id, userID := range owners {
			if userID != *owner {
				return nil, errors.Join(ErrForbidden, fmt.Errorf("message %s belongs to another user", id))
			}
		}
	}

	for userID := range users {
		exists, err := s.users.Exists(ctx, userID)
		if err != nil {
			return nil, persistenceError(err)
		}
		if !exists {
			return nil, ErrUserNotFound
		}
	}

	result := &BulkCreateResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		fresh, duplicates, err := s.gate.Filter(ctx, candidates)
		if err != nil {
			return err
		}
		inserted, err := s.transactions.InsertBatch(ctx, fresh)
		if err != nil {
			return err
		}
		marked, err := s.messages.MarkProcessed(ctx, repository.MarkParams{IDs: messageIDs, UserID: owner})
		if err != nil {
			return err
		}

		result.TransactionsCreated = int(inserted)
		result.DuplicatesFiltered = len(duplicates) + len(fresh) - int(inserted)
		result.MessagesProcessed = len(marked)
		return nil
	})
	if err != nil {
		s.logger.Error("Bulk transaction create rolled back", zap.Error(err))
		return nil, persistenceError(err)
	}

	s.logger.Info("Bulk transactions stored",
		zap.Int("created", result.TransactionsCreated),
		zap.Int("duplicates_filtered", result.DuplicatesFiltered),
		zap.Int("messages_processed", result.MessagesProcessed),
	)
	return result, nil
}

func (s *TransactionService) buildTransaction(ctx context.Context, in dto.BulkTransaction) (*models.Transaction, error) {
	userID, err := uuid.Parse(strings.TrimSpace(in.UserID))
	if err != nil {
		return nil, fmt.Errorf("user_id must be a valid UUID")
	}

	txType := models.TransactionType(strings.ToLower(strings.TrimSpace(in.TransactionType)))
	if !txType.Valid() {
		return nil, fmt.Errorf("transaction_type must be credit or debit")
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if in.Amount.Round(2).GreaterThanOrEqual(models.MaxAmount) {
		return nil, fmt.Errorf("amount must be below %s", models.MaxAmount)
	}
	date, ok := parseTimestamp(in.TransactionDate)
	if !ok {
		return nil, fmt.Errorf("transaction_date is required")
	}

	now := s.now()
	t := &models.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		Type:          txType,
		Category:      strings.TrimSpace(in.Category),
		Amount:        in.Amount.Round(2),
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		Date:          date,
		Description:   truncate(sanitizeUTF8(in.Description), descriptionLength),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.AccountNumber == "" {
		t.AccountNumber = models.UnknownAccountNumber
	}
	if utf8.RuneCountInString(t.AccountNumber) > models.MaxAccountNumberLength {
		return nil, fmt.Errorf("account_number must be at most %d characters", models.MaxAccountNumberLength)
	}
	if t.Currency == "" {
		t.Currency = models.DefaultCurrency
	}
	if len(t.Currency) != 3 {
		return nil, fmt.Errorf("currency must be a 3-letter code")
	}
	if utf8.RuneCountInString(t.Category) > models.MaxCategoryLength {
		return nil, fmt.Errorf("category must be at most %d characters", models.MaxCategoryLength)
	}
	if t.Category == "" {
		t.Category = s.categorizer.Categorize(ctx, t.Description)
	}
	if in.ReferenceID != nil {
		if ref := strings.TrimSpace(*in.ReferenceID); ref != "" {
			if utf8.RuneCountInString(ref) > models.MaxReferenceIDLength {
				return nil, fmt.Errorf("reference_id must be at most %d characters", models.MaxReferenceIDLength)
			}
			t.ReferenceID = &ref
		}
	}
	if in.SourceMessageID != nil && *in.SourceMessageID != "" {
		id, err := uuid.Parse(*in.SourceMessageID)
		if err != nil {
			return nil, fmt.Errorf("source_message_id must be a valid UUID")
		}
		t.SourceMessageID = &id
	}
	return t, nil
}

// List returns a user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	transactions, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, persistenceError(err)
	}
	return transactions, nil
}
