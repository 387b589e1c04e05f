package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalsUserKey is where the middleware stores the authenticated user id.
// It lives in request locals rather than the parsed body so a client-supplied
// field can never collide with it.
const LocalsUserKey = "user_id"

// Middleware returns a Fiber handler that verifies the Authorization bearer
// token and injects the user id into request locals.
//
// A header without a token segment is treated exactly like a missing header:
// 401, never a panic.
func Middleware(svc *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("Authorization"))
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Acesso Negado!"})
		}

		userID, err := svc.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, ErrTokenStructure) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Token Structure"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Token"})
		}

		c.Locals(LocalsUserKey, userID)
		return c.Next()
	}
}

// UserID extracts the authenticated user id stored by Middleware.
func UserID(c *fiber.Ctx) (string, error) {
	val := c.Locals(LocalsUserKey)
	if uid, ok := val.(string); ok && strings.TrimSpace(uid) != "" {
		return uid, nil
	}
	return "", errors.New("user id missing")
}
