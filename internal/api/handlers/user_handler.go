package handlers

import (
	"context"

	"money-mate/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BalanceReader interface {
	Balance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error)
}

type UserHandler struct {
	users  BalanceReader
	logger *zap.Logger
}

func NewUserHandler(users BalanceReader, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Balance godoc
// @Summary Account balance
// @Description Stored balance, or one recovered from the latest transaction SMS quoting it
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Security Bearer
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id}/balance [get]
func (h *UserHandler) Balance(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}
	if err := authorize(c, userID.String()); err != nil {
		return respondError(c, h.logger, err, "Failed to get balance")
	}

	resp, err := h.users.Balance(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get balance")
	}
	return c.JSON(resp)
}
