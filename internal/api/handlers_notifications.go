package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/models"
)

func (handler *Handler) HandleListNotifications(c *fiber.Ctx) error {
	query := models.NotificationListQuery{
		UnreadOnly: c.QueryBool("unread"),
		Category:   c.Query("category"),
		Type:       c.Query("type"),
		Limit:      queryInt(c, "limit", defaultPageSize),
		Offset:     queryInt(c, "offset", 0),
	}

	notifications, total, err := handler.notifications.List(currentUserID(c), query)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"notifications": notifications, "total": total})
}

func (handler *Handler) HandleUnreadCount(c *fiber.Ctx) error {
	count, err := handler.notifications.UnreadCount(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"unread": count})
}

func (handler *Handler) HandleGetNotification(c *fiber.Ctx) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := handler.notifications.Get(currentUserID(c), notificationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, notification)
}

func (handler *Handler) HandleMarkNotificationRead(c *fiber.Ctx) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := handler.notifications.MarkRead(currentUserID(c), notificationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, notification)
}

func (handler *Handler) HandleMarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := handler.notifications.MarkAllRead(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

func (handler *Handler) HandleDeleteNotification(c *fiber.Ctx) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := handler.notifications.Delete(currentUserID(c), notificationID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

type bulkDeleteRequest struct {
	OnlyRead bool   `json:"onlyRead"`
	Category string `json:"category"`
}

func (handler *Handler) HandleBulkDeleteNotifications(c *fiber.Ctx) error {
	request := bulkDeleteRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	deleted, err := handler.notifications.BulkDelete(currentUserID(c), request.OnlyRead, request.Category)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}

// HandleTestReminder creates an immediate reminder for the caller so a
// client can verify its delivery channel end to end.
func (handler *Handler) HandleTestReminder(c *fiber.Ctx) error {
	notification, err := handler.notifications.CreateReminder(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, notification)
}

func (handler *Handler) HandleNotificationStats(c *fiber.Ctx) error {
	stats, err := handler.notifications.Stats(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, stats)
}
