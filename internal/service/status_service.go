package service

import (
	"context"
	"math"

	"money-mate/internal/dto"

	"github.com/google/uuid"
)

// StatusService reports processing progress straight from the database.
type StatusService struct {
	messages MessageStore
}

func NewStatusService(messages MessageStore) *StatusService {
	return &StatusService{messages: messages}
}

func (s *StatusService) Status(ctx context.Context, userID *uuid.UUID) (*dto.ProcessingStatus, error) {
	total, err := s.messages.Count(ctx, userID, false)
	if err != nil {
		return nil, persistenceError(err)
	}
	processed, err := s.messages.Count(ctx, userID, true)
	if err != nil {
		return nil, persistenceError(err)
	}

	return &dto.ProcessingStatus{
		Total:       total,
		Processed:   processed,
		Unprocessed: total - processed,
		Percentage:  percentage(processed, total),
	}, nil
}

func percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
