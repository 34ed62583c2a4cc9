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

type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// CreateSubmission records the caller's task entry for a contest.
// Payment authorizes at most one submission: no payment → 403,
// second submission → 400.
func (s *SubmissionService) CreateSubmission(c *fiber.Ctx) error {
	var req struct {
		ContestID string `json:"contestId"`
		Task      string `json:"task"`
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

	var payment models.Payment
	if err := s.DB.Where("uid = ? AND contest_id = ?", uid, req.ContestID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "must pay to submit"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check payment"})
	}

	var existing models.Submission
	err := s.DB.Where("uid = ? AND contest_id = ?", uid, req.ContestID).
		First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already submitted"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check submission"})
	}

	// Denormalize the submitter's profile for the creator's review screen.
	// A missing profile is fine — the token identity is enough.
	var user models.User
	_ = s.DB.Where("uid = ?", uid).First(&user).Error

	submission := models.Submission{
		ID:          uuid.NewString(),
		ContestID:   req.ContestID,
		UID:         uid,
		Email:       middleware.AuthEmail(c),
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Task:        req.Task,
		SubmittedAt: time.Now(),
	}

	if err := s.DB.Create(&submission).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save submission"})
	}

	return c.JSON(submission)
}

// CheckSubmission is a boolean existence probe, scoped to the caller's own
// identity.
func (s *SubmissionService) CheckSubmission(c *fiber.Ctx) error {
	uid := c.Params("uid")
	if uid != middleware.AuthUID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: identity mismatch"})
	}

	var count int64
	if err := s.DB.Model(&models.Submission{}).
		Where("uid = ? AND contest_id = ?", uid, c.Params("contestId")).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check submission"})
	}

	return c.JSON(fiber.Map{"submitted": count > 0})
}

// CreatorSubmissions returns submissions for the given contest ids. The ids
// are filtered to contests the caller actually owns before querying, so a
// creator cannot read another creator's submissions by guessing ids.
func (s *SubmissionService) CreatorSubmissions(c *fiber.Ctx) error {
	var req struct {
		ContestIDs []string `json:"contestIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.ContestIDs) == 0 {
		return c.JSON([]models.Submission{})
	}

	var ownedIDs []string
	if err := s.DB.Model(&models.Contest{}).
		Where("id IN ? AND creator_uid = ?", req.ContestIDs, middleware.AuthUID(c)).
		Pluck("id", &ownedIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to verify contests"})
	}
	if len(ownedIDs) == 0 {
		return c.JSON([]models.Submission{})
	}

	var submissions []models.Submission
	if err := s.DB.Where("contest_id IN ?", ownedIDs).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list submissions"})
	}

	return c.JSON(submissions)
}
