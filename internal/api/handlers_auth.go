package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (handler *Handler) HandleRegister(c *fiber.Ctx) error {
	request := registerRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := handler.auth.Register(services.RegisterInput{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
		Nickname: request.Nickname,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	token, err := handler.buildToken(&user, defaultAuthTokenTTL)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, fiber.Map{"user": user, "token": token})
}

func (handler *Handler) HandleLogin(c *fiber.Ctx) error {
	request := loginRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := handler.auth.Login(request.Identifier, request.Password)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	token, err := handler.buildToken(&user, defaultAuthTokenTTL)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"user": user, "token": token})
}

func (handler *Handler) HandleCurrentUser(c *fiber.Ctx) error {
	user, err := handler.auth.FindByID(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}
