package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIDContextKey = "userID"

// RequireAuth validates the Bearer token and stores the user ID in the
// request context.
func (handler *Handler) RequireAuth(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return respondError(c, fiber.StatusUnauthorized, "missing bearer token")
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return respondError(c, fiber.StatusUnauthorized, "invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return respondError(c, fiber.StatusUnauthorized, "token expired")
	}

	c.Locals(userIDContextKey, claims.UserID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals(userIDContextKey).(uint)
	return userID
}
