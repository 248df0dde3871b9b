package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/DineRate/internal/auth"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"

	// SessionCookie is the cookie set on signup and signin.
	SessionCookie = "token"
)

// SessionValidator verifies session tokens. Implemented by services.AuthService.
type SessionValidator interface {
	Authenticate(token string) (*auth.SessionClaims, error)
}

// AuthMiddleware validates the session token and stores the user in locals.
// The token may come from "Authorization: Bearer", from the legacy
// "token: Bearer" header, or from the session cookie.
func AuthMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearer(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			tokenString = bearer(c.Get("token"))
		}
		if tokenString == "" {
			tokenString = c.Cookies(SessionCookie)
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}

		claims, err := sessions.Authenticate(tokenString)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Invalid token"})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by AuthMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
