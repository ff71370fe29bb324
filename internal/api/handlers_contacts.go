package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/services"
)

type contactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

func (request contactRequest) toInput() services.ContactInput {
	return services.ContactInput{
		Name:         request.Name,
		Phone:        request.Phone,
		Email:        request.Email,
		Relationship: request.Relationship,
	}
}

func (handler *Handler) HandleListContacts(c *fiber.Ctx) error {
	contacts, err := handler.contacts.ListContacts(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"contacts": contacts})
}

func (handler *Handler) HandleAddContact(c *fiber.Ctx) error {
	request := contactRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := handler.contacts.AddContact(currentUserID(c), request.toInput())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, contact)
}

func (handler *Handler) HandleUpdateContact(c *fiber.Ctx) error {
	contactID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid contact id")
	}
	request := contactRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := handler.contacts.UpdateContact(currentUserID(c), contactID, request.toInput())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, contact)
}

func (handler *Handler) HandleDeleteContact(c *fiber.Ctx) error {
	contactID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	if err := handler.contacts.DeleteContact(currentUserID(c), contactID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// HandleDeactivateAccount retires the caller's account. The token the
// request carried keeps working until it expires, but login is gone.
func (handler *Handler) HandleDeactivateAccount(c *fiber.Ctx) error {
	if err := handler.settings.DeactivateAccount(currentUserID(c)); err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deactivated": true})
}
