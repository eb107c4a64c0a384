// Package auth verifies bearer credentials issued by the external identity
// provider and exposes the authenticated user id to handlers. Token minting
// and account credentials live outside this service.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIDLocal = "user_id"

// Middleware returns a Fiber handler that verifies the Authorization bearer
// token (HS256, user_id claim) and stores the verified id in the request
// locals. Requests without a valid token get a 401.
func Middleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		uid, ok := claims["user_id"].(string)
		if !ok || strings.TrimSpace(uid) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userIDLocal, strings.TrimSpace(uid))
		return c.Next()
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals(userIDLocal); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// RequireOwner rejects requests whose userId path parameter does not match the
// authenticated caller. Resources addressed by tag resolve ownership in their
// handlers instead.
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID, ok := UserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}
		if pathID := strings.TrimSpace(c.Params("userId")); pathID != "" && pathID != authID {
			return fiber.NewError(fiber.StatusForbidden, "you can only access your own data")
		}
		return c.Next()
	}
}
