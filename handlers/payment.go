package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
	"contest-hub-service/services"
)

func SetupPaymentRoutes(app *fiber.App, paymentService *services.PaymentService, submissionService *services.SubmissionService, verifier middleware.TokenVerifier) {
	auth := middleware.AuthRequired(verifier)
	creator := middleware.RequireRole(submissionService.DB, models.RoleCreator)

	// 🔐 Any authenticated user
	app.Post("/submissions", auth, submissionService.CreateSubmission)
	app.Get("/check-submission/:uid/:contestId", auth, submissionService.CheckSubmission)
	app.Post("/save-payment", auth, paymentService.SavePayment)
	app.Get("/check-payment/:uid/:contestId", auth, paymentService.CheckPayment)
	app.Get("/my-participated", auth, paymentService.MyParticipated)
	app.Post("/create-checkout-session", auth, paymentService.CreateCheckoutSession)

	// 🔐 Creator review of submissions for their own contests
	app.Post("/creator/submissions", auth, creator, submissionService.CreatorSubmissions)
}
