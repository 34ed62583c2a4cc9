package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier checks a bearer credential with the identity provider and
// returns the verified subject id and email. Implemented by
// services.IdentityClient.
type TokenVerifier interface {
	VerifyToken(idToken string) (uid string, email string, err error)
}

// AuthRequired extracts the bearer token from the Authorization header and
// verifies it with the identity provider. On success the subject id and email
// are attached to the request context for downstream handlers.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized access",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		uid, email, err := verifier.VerifyToken(token)
		if err != nil {
			log.Printf("🚫 [AUTH] Token verification failed for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("uid", uid)
		c.Locals("email", email)

		return c.Next()
	}
}

// AuthUID returns the verified subject id attached by AuthRequired, or ""
// when the request never passed through the guard.
func AuthUID(c *fiber.Ctx) string {
	uid, _ := c.Locals("uid").(string)
	return uid
}

// AuthEmail returns the verified email attached by AuthRequired.
func AuthEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("email").(string)
	return email
}
