package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contest-hub-service/models"
)

// RequireRole loads the authenticated user's stored record and rejects the
// request unless its role equals requiredRole exactly. No hierarchy: an admin
// calling a creator-only route is rejected. Must run after AuthRequired.
func RequireRole(db *gorm.DB, requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := AuthUID(c)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized access",
			})
		}

		var user models.User
		if err := db.Where("uid = ?", uid).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "forbidden: insufficient role",
				})
			}
			log.Printf("❌ [ROLE] Failed to load user %s: %v", uid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "server error",
			})
		}

		if user.Role != requiredRole {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden: insufficient role",
			})
		}

		c.Locals("role", user.Role)
		return c.Next()
	}
}
