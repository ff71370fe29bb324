package api

import (
	"github.com/gofiber/fiber/v2"
)

type clearAllRequest struct {
	Confirm string `json:"confirm"`
}

// HandleClearAllData wipes the caller's check-ins, notifications and
// emergency contacts. The body must carry the literal confirmation token.
func (handler *Handler) HandleClearAllData(c *fiber.Ctx) error {
	request := clearAllRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.data.ClearAll(currentUserID(c), request.Confirm)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}
