package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
	"contest-hub-service/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, verifier middleware.TokenVerifier) {
	auth := middleware.AuthRequired(verifier)
	admin := middleware.RequireRole(userService.DB, models.RoleAdmin)

	// 🔓 Public: upsert-on-login (the client calls this right after sign-in)
	app.Post("/users", userService.UpsertUser)

	// 🔐 Authenticated, self-scoped
	app.Get("/user/:uid", auth, userService.GetUser)
	app.Patch("/user/:uid", auth, userService.UpdateProfile)

	// 🔒 Admin-only
	app.Get("/admin/users", auth, admin, userService.ListUsers)
	app.Patch("/admin/users/:id/role", auth, admin, userService.ChangeRole)
}
