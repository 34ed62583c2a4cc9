package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
	"contest-hub-service/services"
)

func SetupContestRoutes(app *fiber.App, contestService *services.ContestService, verifier middleware.TokenVerifier) {
	auth := middleware.AuthRequired(verifier)
	creator := middleware.RequireRole(contestService.DB, models.RoleCreator)
	admin := middleware.RequireRole(contestService.DB, models.RoleAdmin)

	// 🔓 Public browsing
	app.Get("/contests", contestService.GetApprovedContests)
	app.Get("/contests/search", contestService.SearchContests)
	app.Get("/contest/:id", contestService.GetContestByID)
	app.Get("/recent-winners", contestService.RecentWinners)
	app.Get("/leaderboard", contestService.Leaderboard)

	// 🔐 Creator routes — ownership and pending-status checks live in the handlers
	app.Post("/contests", auth, creator, contestService.CreateContest)
	app.Get("/creator/contests", auth, creator, contestService.MyContests)
	app.Patch("/contests/:id/winner", auth, creator, contestService.DeclareWinner)
	app.Post("/contests/:id/image", auth, creator, contestService.UploadContestImage)
	app.Patch("/contests/:id", auth, creator, contestService.UpdateContest)
	app.Delete("/contests/:id", auth, creator, contestService.DeleteContest)

	// 🔒 Admin moderation
	app.Get("/admin/contests", auth, admin, contestService.AdminContests)
	app.Patch("/admin/contests/:id", auth, admin, contestService.ModerateContest)
}
