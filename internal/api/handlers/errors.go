package handlers

import (
	"errors"
	"strings"

	"money-mate/internal/service"
	"money-mate/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes. Storage details never
// reach the client.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, failure string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": strings.ReplaceAll(err.Error(), "\n", ": "),
		})
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": strings.ReplaceAll(err.Error(), "\n", ": "),
		})
	}

	logger.Error(failure, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": failure,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// authenticatedUser returns the user id set by the auth middleware, if any.
func authenticatedUser(c *fiber.Ctx) (uuid.UUID, bool) {
	raw, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// authorize rejects a request naming a user other than the token's.
// Unauthenticated requests pass; the router decides whether auth is required.
func authorize(c *fiber.Ctx, requested string) error {
	self, ok := authenticatedUser(c)
	if !ok || requested == "" {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(requested))
	if err != nil || id != self {
		return service.ErrForbidden
	}
	return nil
}

// scopeUser resolves the optional user_id filter of a request. Authenticated
// callers are always scoped to themselves.
func scopeUser(c *fiber.Ctx, requested string) (*uuid.UUID, error) {
	if err := authorize(c, requested); err != nil {
		return nil, err
	}
	if self, ok := authenticatedUser(c); ok {
		return &self, nil
	}
	if requested == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(requested))
	if err != nil {
		return nil, errors.Join(service.ErrValidation, errors.New("user_id must be a valid UUID"))
	}
	return &id, nil
}

// ownerScope is the authenticated user as a scope, or nil without auth.
func ownerScope(c *fiber.Ctx) *uuid.UUID {
	if self, ok := authenticatedUser(c); ok {
		return &self
	}
	return nil
}
