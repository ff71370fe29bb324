package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/services"
	"go.uber.org/zap"
)

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": fiber.Map{"message": message}})
}

func respondViolations(c *fiber.Ctx, validationError *services.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{
			"message":    "validation failed",
			"violations": validationError.Violations,
		},
	})
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Anything unmapped is logged and becomes a 500 without leaking detail.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	validationError := &services.ValidationError{}
	if errors.As(err, &validationError) {
		return respondViolations(c, validationError)
	}

	switch {
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		return respondError(c, fiber.StatusConflict, "already checked in today")
	case errors.Is(err, services.ErrCheckInNotToday):
		return respondError(c, fiber.StatusBadRequest, "only today's check-in can be edited")
	case errors.Is(err, services.ErrCheckInNotFound):
		return respondError(c, fiber.StatusNotFound, "check-in not found")
	case errors.Is(err, services.ErrNotificationNotFound):
		return respondError(c, fiber.StatusNotFound, "notification not found")
	case errors.Is(err, services.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, services.ErrUsernameTaken):
		return respondError(c, fiber.StatusConflict, "username already taken")
	case errors.Is(err, services.ErrEmailTaken):
		return respondError(c, fiber.StatusConflict, "email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		return respondError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrAccountDisabled):
		return respondError(c, fiber.StatusForbidden, "account disabled")
	case errors.Is(err, services.ErrCurrentPasswordInvalid):
		return respondError(c, fiber.StatusBadRequest, "current password invalid")
	case errors.Is(err, services.ErrContactNotFound):
		return respondError(c, fiber.StatusNotFound, "emergency contact not found")
	case errors.Is(err, services.ErrContactExists):
		return respondError(c, fiber.StatusConflict, "emergency contact already exists")
	case errors.Is(err, services.ErrContactLimitReached):
		return respondError(c, fiber.StatusConflict, "emergency contact limit reached")
	}

	handler.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.Error(err),
	)
	return respondError(c, fiber.StatusInternalServerError, "internal error")
}
