package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"money-mate/internal/dto"
	"money-mate/internal/jobs"
	"money-mate/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxSenderLength = 100
	// maxBodyBytes keeps (user_id, sender, message_body) within a btree
	// index entry.
	maxBodyBytes = 2000
)

// Batch is a validated ingestion request, ready to be written.
type Batch struct {
	UserID   uuid.UUID
	Messages []*models.Message
	// Received counts entries as submitted, before skipping and collapsing.
	Received   int
	Skipped    int
	Duplicates int
}

// Progress is reported after every chunk. Counts never decrease and
// Processed reaches Total, the number of entries received, on the last one.
type Progress struct {
	Inserted  int
	Processed int
	Total     int
}

type IngestResult struct {
	Inserted   int
	Duplicates int
	Skipped    int
	Total      int
}

type IngestionService struct {
	users     UserStore
	messages  MessageStore
	tx        Transactor
	publisher jobs.Publisher
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewIngestionService wires the intake pipeline. publisher may be nil, in
// which case no processing pass is triggered after a commit.
func NewIngestionService(users UserStore, messages MessageStore, tx Transactor, publisher jobs.Publisher, batchSize int, logger *zap.Logger) *IngestionService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &IngestionService{
		users:     users,
		messages:  messages,
		tx:        tx,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest validates and commits req in one go.
func (s *IngestionService) Ingest(ctx context.Context, req dto.IngestRequest, onProgress func(Progress)) (*IngestResult, error) {
	batch, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, batch, onProgress)
}

// Prepare rejects the whole request when the user is missing or unknown or
// there are no messages. Entries without sender or body, or with an oversized
// one, are skipped, and repeats of the same (sender, body) within the request
// are collapsed.
func (s *IngestionService) Prepare(ctx context.Context, req dto.IngestRequest) (*Batch, error) {
	rawUserID := strings.TrimSpace(req.UserID)
	if rawUserID == "" {
		return nil, validationError("user_id is required")
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, validationError("user_id must be a valid UUID")
	}

	entries := req.Messages
	if len(entries) == 0 && (req.Sender != "" || req.MessageBody != "") {
		entries = []dto.IngestMessage{{
			Sender:      req.Sender,
			MessageBody: req.MessageBody,
			Status:      req.Status,
			ReceivedAt:  req.ReceivedAt,
		}}
	}
	if len(entries) == 0 {
		return nil, validationError("messages must not be empty")
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	now := s.now()
	batch := &Batch{UserID: userID, Received: len(entries)}
	seen := make(map[models.MessageKey]bool, len(entries))

	for _, e := range entries {
		msg, ok := newMessage(userID, e, now)
		if !ok {
			batch.Skipped++
			continue
		}
		if seen[msg.Key()] {
			batch.Duplicates++
			continue
		}
		seen[msg.Key()] = true
		batch.Messages = append(batch.Messages, msg)
	}

	return batch, nil
}

func newMessage(userID uuid.UUID, e dto.IngestMessage, now time.Time) (*models.Message, bool) {
	sender := strings.TrimSpace(sanitizeUTF8(e.Sender))
	body := strings.TrimSpace(sanitizeUTF8(e.MessageBody))
	if sender == "" || body == "" || utf8.RuneCountInString(sender) > maxSenderLength || len(body) > maxBodyBytes {
		return nil, false
	}

	status := models.MessageStatusReceived
	if e.Status != "" {
		status = models.MessageStatus(strings.ToLower(strings.TrimSpace(e.Status)))
		if !status.Valid() {
			return nil, false
		}
	}

	receivedAt, ok := parseTimestamp(e.ReceivedAt)
	if !ok {
		receivedAt = now
	}

	return &models.Message{
		ID:         uuid.New(),
		UserID:     userID,
		Sender:     sender,
		Body:       body,
		Status:     status,
		ReceivedAt: receivedAt,
		CreatedAt:  now,
	}, true
}

// Commit writes the batch inside a single transaction, chunk by chunk. Each
// chunk costs one existence lookup and one multi-row insert; the unique
// constraint absorbs rows inserted concurrently by another request. Any
// failure rolls everything back.
func (s *IngestionService) Commit(ctx context.Context, batch *Batch, onProgress func(Progress)) (*IngestResult, error) {
	result := &IngestResult{
		Duplicates: batch.Duplicates,
		Skipped:    batch.Skipped,
		Total:      batch.Received,
	}
	if len(batch.Messages) == 0 {
		return result, nil
	}

	total := len(batch.Messages)
	// skipped and collapsed entries count as handled from the start
	handled := batch.Skipped + batch.Duplicates
	var inserted, duplicates int

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		inserted, duplicates = 0, 0

		for start := 0; start < total; start += s.batchSize {
			end := min(start+s.batchSize, total)
			chunk := batch.Messages[start:end]

			keys := make([]models.MessageKey, len(chunk))
			for i, m := range chunk {
				keys[i] = m.Key()
			}
			existing, err := s.messages.FindExisting(ctx, batch.UserID, keys)
			if err != nil {
				return err
			}

			fresh := make([]*models.Message, 0, len(chunk))
			for _, m := range chunk {
				if !existing[m.Key()] {
					fresh = append(fresh, m)
				}
			}

			n, err := s.messages.InsertBatch(ctx, fresh)
			if err != nil {
				return err
			}
			inserted += int(n)
			duplicates += len(chunk) - int(n)

			if onProgress != nil {
				onProgress(Progress{Inserted: inserted, Processed: handled + end, Total: batch.Received})
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Message ingestion rolled back",
			zap.String("user_id", batch.UserID.String()),
			zap.Int("messages", total),
			zap.Error(err),
		)
		return nil, persistenceError(err)
	}

	result.Inserted = inserted
	result.Duplicates += duplicates

	s.logger.Info("Messages ingested",
		zap.String("user_id", batch.UserID.String()),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
	)

	if inserted > 0 {
		s.triggerProcessing(ctx, batch.UserID)
	}

	return result, nil
}

// triggerProcessing is best effort; the ingest is already committed.
func (s *IngestionService) triggerProcessing(ctx context.Context, userID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	job := &jobs.ProcessMessagesJob{UserID: &userID, Reason: "ingest"}
	if err := s.publisher.PublishProcessMessages(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Warn("Failed to trigger message processing",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}
