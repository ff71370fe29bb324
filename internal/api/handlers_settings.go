package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/services"
)

type profileUpdateRequest struct {
	Nickname *string `json:"nickname"`
	Bio      *string `json:"bio"`
	Theme    *string `json:"theme"`
}

type notificationSettingsRequest struct {
	NotificationEnabled *bool   `json:"notificationEnabled"`
	CheckInReminder     *bool   `json:"checkInReminder"`
	ReminderTime        *string `json:"reminderTime"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (handler *Handler) HandleGetSettings(c *fiber.Ctx) error {
	user, err := handler.settings.LoadSettings(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

func (handler *Handler) HandleUpdateProfile(c *fiber.Ctx) error {
	request := profileUpdateRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := handler.settings.UpdateProfile(currentUserID(c), services.ProfileUpdate{
		Nickname: request.Nickname,
		Bio:      request.Bio,
		Theme:    request.Theme,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.HandleGetSettings(c)
}

func (handler *Handler) HandleUpdateNotificationSettings(c *fiber.Ctx) error {
	request := notificationSettingsRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := handler.settings.UpdateNotificationSettings(currentUserID(c), services.NotificationSettingsUpdate{
		NotificationEnabled: request.NotificationEnabled,
		CheckInReminder:     request.CheckInReminder,
		ReminderTime:        request.ReminderTime,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.HandleGetSettings(c)
}

func (handler *Handler) HandleChangePassword(c *fiber.Ctx) error {
	request := changePasswordRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := handler.settings.ChangePassword(currentUserID(c), request.CurrentPassword, request.NewPassword)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"changed": true})
}
