package services

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
)

// CheckoutProvider creates a hosted checkout flow for a contest's entry fee
// and returns the URL the client should be redirected to. Implemented by
// OmiseGateway; tests substitute a stub.
type CheckoutProvider interface {
	CreateCheckout(contest *models.Contest, uid, email string) (string, error)
}

type PaymentService struct {
	DB       *gorm.DB
	Checkout CheckoutProvider
}

func NewPaymentService(db *gorm.DB, checkout CheckoutProvider) *PaymentService {
	return &PaymentService{DB: db, Checkout: checkout}
}

// SavePayment records that the caller paid a contest's entry fee.
// Idempotent: a repeat call answers success with alreadyPaid and changes
// nothing. The first call inserts the payment and bumps the contest's
// participant counter inside one transaction, so the counter can never drift
// from the payment rows.
func (s *PaymentService) SavePayment(c *fiber.Ctx) error {
	var req struct {
		ContestID string `json:"contestId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ContestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contestId is required"})
	}

	uid := middleware.AuthUID(c)

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", req.ContestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}

	var existing models.Payment
	err := s.DB.Where("uid = ? AND contest_id = ?", uid, req.ContestID).
		First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "alreadyPaid": true})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check payment"})
	}

	payment := models.Payment{
		ID:        uuid.NewString(),
		UID:       uid,
		ContestID: req.ContestID,
		Email:     middleware.AuthEmail(c),
		Status:    "succeeded",
		CreatedAt: time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Contest{}).
			Where("id = ?", req.ContestID).
			UpdateColumn("participants", gorm.Expr("participants + 1")).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save payment"})
	}

	return c.JSON(fiber.Map{"success": true, "alreadyPaid": false})
}

// CheckPayment is a boolean existence probe, scoped to the caller's own
// identity.
func (s *PaymentService) CheckPayment(c *fiber.Ctx) error {
	uid := c.Params("uid")
	if uid != middleware.AuthUID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: identity mismatch"})
	}

	var count int64
	if err := s.DB.Model(&models.Payment{}).
		Where("uid = ? AND contest_id = ?", uid, c.Params("contestId")).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check payment"})
	}

	return c.JSON(fiber.Map{"paid": count > 0})
}

// MyParticipated lists contests the caller has paid for, soonest deadline
// first.
func (s *PaymentService) MyParticipated(c *fiber.Ctx) error {
	var contestIDs []string
	if err := s.DB.Model(&models.Payment{}).
		Where("uid = ?", middleware.AuthUID(c)).
		Pluck("contest_id", &contestIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load payments"})
	}
	if len(contestIDs) == 0 {
		return c.JSON([]models.Contest{})
	}

	var contests []models.Contest
	if err := s.DB.Where("id IN ?", contestIDs).
		Order("deadline ASC").
		Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list contests"})
	}

	return c.JSON(contests)
}

// CreateCheckoutSession asks the payment gateway for a hosted checkout and
// returns the redirect URL. Only approved contests with a future deadline are
// payable. Recording the payment happens separately via SavePayment once the
// client lands back on the success page.
func (s *PaymentService) CreateCheckoutSession(c *fiber.Ctx) error {
	var req struct {
		ContestID string `json:"contestId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ContestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contestId is required"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", req.ContestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}

	if contest.Status != models.ContestApproved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contest is not open for payment"})
	}
	if time.Now().After(contest.Deadline) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contest deadline has passed"})
	}

	url, err := s.Checkout.CreateCheckout(&contest, middleware.AuthUID(c), middleware.AuthEmail(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create checkout session"})
	}

	return c.JSON(fiber.Map{"url": url})
}
