package middleware

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/auth"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID    = "userID"
	localPrincipal = "principal"
)

var errMissingCredential = errors.New("authorization required")

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		principal, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrTokenRevoked) {
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}

		setPrincipal(c, principal)
		return c.Next()
	}
}

// OptionalAuth attaches the principal when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err == nil {
			if principal, verifyErr := verifier.Verify(c.UserContext(), token); verifyErr == nil {
				setPrincipal(c, principal)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated viewer id, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok && id != 0
}

// Principal returns the verified token principal, if any.
func Principal(c *fiber.Ctx) (*auth.Principal, bool) {
	p, ok := c.Locals(localPrincipal).(*auth.Principal)
	return p, ok
}

func setPrincipal(c *fiber.Ctx, p *auth.Principal) {
	c.Locals(localUserID, p.UserID)
	c.Locals(localPrincipal, p)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, p.UserID))
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", errMissingCredential
	}

	// Extract token from "Bearer <token>"
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMissingCredential
	}
	return parts[1], nil
}
