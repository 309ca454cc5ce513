package service

import (
	"context"
	"errors"
	"time"

	"money-mate/internal/dto"
	"money-mate/internal/extractor"
	"money-mate/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// balanceScanDepth is how many recent transactions are searched for a
// quoted balance.
const balanceScanDepth = 20

type UserService struct {
	users        UserStore
	transactions TransactionStore
	logger       *zap.Logger
}

func NewUserService(users UserStore, transactions TransactionStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, transactions: transactions, logger: logger}
}

// Balance returns the stored account balance. When none is stored yet it is
// recovered from the newest transaction SMS that quotes one, and saved.
func (s *UserService) Balance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, persistenceError(err)
	}

	resp := &dto.BalanceResponse{UserID: userID.String(), Source: dto.BalanceSourceUnavailable}
	if user.AccountBalance.Valid {
		balance := user.AccountBalance.Decimal
		resp.Balance = &balance
		resp.Source = dto.BalanceSourceStored
		return resp, nil
	}

	recent, err := s.transactions.ListByUser(ctx, userID, balanceScanDepth, 0)
	if err != nil {
		return nil, persistenceError(err)
	}

	var recovered *decimal.Decimal
	var quotedAt time.Time
	for _, t := range recent {
		if recovered = extractor.ExtractBalance(t.Description); recovered != nil {
			quotedAt = t.Date
			break
		}
	}
	if recovered == nil {
		return resp, nil
	}

	if err := s.users.UpdateBalance(ctx, userID, *recovered, quotedAt); err != nil {
		s.logger.Warn("Failed to persist recovered balance", zap.String("user_id", userID.String()), zap.Error(err))
	}
	resp.Balance = recovered
	resp.Source = dto.BalanceSourceRecovered
	return resp, nil
}
