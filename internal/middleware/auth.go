// Package middleware provides authentication, logging, rate limiting and
// tracing middleware for the HTTP layer.
package middleware

import (
	"fleamart/internal/token"

	"github.com/gofiber/fiber/v2"
)

// Cookie names used for the session token pair.
const (
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
)

// OptionalAuth resolves the user ID when a valid access token cookie is
// present but never rejects the request. Handlers use it on public reads
// that personalize their response (like flags on listings). Required
// authentication lives on Server.AuthRequired, which additionally checks
// that the account still exists.
func OptionalAuth(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(AccessTokenCookie); raw != "" {
			if userID, err := tokens.VerifyAccess(raw); err == nil {
				c.Locals("userID", userID)
			}
		}
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user ID stored by the auth guard.
func UserIDFromCtx(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}
