package handlers

import (
	"context"
	"time"

	"money-mate/internal/dto"
	"money-mate/internal/models"
	"money-mate/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionWriter interface {
	BulkCreate(ctx context.Context, req dto.BulkCreateRequest, owner *uuid.UUID) (*service.BulkCreateResult, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionWriter
	logger       *zap.Logger
}

func NewTransactionHandler(transactions TransactionWriter, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// BulkCreate godoc
// @Summary Store extracted transactions
// @Description Inserts transactions whose reference id is not stored yet and marks the listed messages processed, atomically.
// @Description With a token, every transaction and message must belong to the token's user.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.BulkCreateRequest true "Transactions and processed message ids"
// @Security Bearer
// @Success 201 {object} dto.BulkCreateResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transactions/bulk-create [post]
func (h *TransactionHandler) BulkCreate(c *fiber.Ctx) error {
	var req dto.BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	for _, t := range req.Transactions {
		if err := authorize(c, t.UserID); err != nil {
			return respondError(c, h.logger, err, "Failed to create transactions")
		}
	}

	result, err := h.transactions.BulkCreate(c.UserContext(), req, ownerScope(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create transactions")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.BulkCreateResponse{
		TransactionsCreated: result.TransactionsCreated,
		DuplicatesFiltered:  result.DuplicatesFiltered,
		MessagesProcessed:   result.MessagesProcessed,
	})
}

// ListTransactions godoc
// @Summary List a user's transactions
// @Tags transactions
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {object} dto.TransactionListResponse
// @Failure 400 {object} map[string]string
// @Router /transactions/user/{user_id} [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}
	if err := authorize(c, userID.String()); err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	list, err := h.transactions.List(c.UserContext(), userID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	resp := dto.TransactionListResponse{Transactions: make([]dto.TransactionResponse, 0, len(list))}
	for _, t := range list {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	resp.Count = len(resp.Transactions)
	return c.JSON(resp)
}

func toTransactionResponse(t *models.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:              t.ID.String(),
		UserID:          t.UserID.String(),
		AccountNumber:   t.AccountNumber,
		TransactionType: string(t.Type),
		Category:        t.Category,
		Amount:          t.Amount,
		Currency:        t.Currency,
		TransactionDate: t.Date.Format(time.RFC3339),
		Description:     t.Description,
		ReferenceID:     t.ReferenceID,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
	if t.SourceMessageID != nil {
		id := t.SourceMessageID.String()
		resp.SourceMessageID = &id
	}
	return resp
}
