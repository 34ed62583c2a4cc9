package services

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
)

// ImageUploader stores a contest image and returns its public URL.
// Implemented by utils.R2Storage; tests substitute a stub.
type ImageUploader interface {
	Upload(file *multipart.FileHeader, key string) (string, error)
}

type ContestService struct {
	DB       *gorm.DB
	Uploader ImageUploader
}

func NewContestService(db *gorm.DB, uploader ImageUploader) *ContestService {
	return &ContestService{DB: db, Uploader: uploader}
}

// GetApprovedContests lists approved contests, most popular first.
func (s *ContestService) GetApprovedContests(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	var contests []models.Contest
	if err := s.DB.Where("status = ?", models.ContestApproved).
		Order("participants DESC").
		Limit(limit).
		Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list contests"})
	}

	return c.JSON(contests)
}

// GetContestByID returns one contest, any status.
func (s *ContestService) GetContestByID(c *fiber.Ctx) error {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}

	return c.JSON(contest)
}

// SearchContests matches approved contests whose category equals the query,
// case-insensitively. An empty query returns an empty list on purpose — the
// search box is not a browse-all entry point.
func (s *ContestService) SearchContests(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		return c.JSON([]models.Contest{})
	}

	var contests []models.Contest
	if err := s.DB.Where("status = ? AND LOWER(category) = ?",
		models.ContestApproved, strings.ToLower(category)).
		Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
	}

	return c.JSON(contests)
}

// RecentWinners returns up to 3 contests with a declared winner, newest
// declaration first.
func (s *ContestService) RecentWinners(c *fiber.Ctx) error {
	var contests []models.Contest
	if err := s.DB.Where("winner_declared_at IS NOT NULL").
		Order("winner_declared_at DESC").
		Limit(3).
		Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load winners"})
	}

	return c.JSON(contests)
}

// LeaderboardEntry is one row of the win-count ranking.
type LeaderboardEntry struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"display_name"`
	PhotoURL    string  `json:"photo_url"`
	Wins        int64   `json:"wins"`
	TotalPrize  float64 `json:"total_prize"`
}

// Leaderboard ranks users by contests won. Computed live as a join so it
// always reflects current contest state — winners are declared asynchronously
// and a stored counter would drift.
func (s *ContestService) Leaderboard(c *fiber.Ctx) error {
	var entries []LeaderboardEntry
	err := s.DB.Raw(`
		SELECT u.uid, u.display_name, u.photo_url,
		       COUNT(ct.id) AS wins,
		       COALESCE(SUM(ct.prize_money), 0) AS total_prize
		FROM users u
		JOIN contests ct ON ct.winner_uid = u.uid
		WHERE ct.status = ? AND ct.winner_declared_at IS NOT NULL
		GROUP BY u.uid, u.display_name, u.photo_url
		ORDER BY wins DESC, total_prize DESC`,
		models.ContestApproved).Scan(&entries).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build leaderboard"})
	}

	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	return c.JSON(entries)
}

// CreateContest creates a pending contest owned by the calling creator.
// Status, participant count and creator identity are stamped server-side —
// caller-supplied values for those fields are not trusted.
func (s *ContestService) CreateContest(c *fiber.Ctx) error {
	var req struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Task        string    `json:"task"`
		Category    string    `json:"category"`
		ImageURL    string    `json:"image_url"`
		Price       float64   `json:"price"`
		PrizeMoney  float64   `json:"prize_money"`
		Deadline    time.Time `json:"deadline"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Name == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and category are required"})
	}
	if req.Deadline.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deadline is required"})
	}
	if req.Price < 0 || req.PrizeMoney < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price and prize_money must be non-negative"})
	}

	contest := models.Contest{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		Task:         req.Task,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		PrizeMoney:   req.PrizeMoney,
		Deadline:     req.Deadline,
		CreatorUID:   middleware.AuthUID(c),
		CreatorEmail: middleware.AuthEmail(c),
		Status:       models.ContestPending, // always starts pending
		Participants: 0,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.Create(&contest).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create contest"})
	}

	return c.JSON(contest)
}

// MyContests lists the calling creator's own contests, any status.
func (s *ContestService) MyContests(c *fiber.Ctx) error {
	var contests []models.Contest
	if err := s.DB.Where("creator_uid = ?", middleware.AuthUID(c)).
		Order("created_at DESC").
		Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list contests"})
	}

	return c.JSON(contests)
}

// loadOwnedPending fetches a contest and checks the edit preconditions:
// it exists, the caller owns it, and moderation hasn't happened yet.
func (s *ContestService) loadOwnedPending(c *fiber.Ctx, id string) (*models.Contest, error) {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}
	if contest.CreatorUID != middleware.AuthUID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: not your contest"})
	}
	if contest.Status != models.ContestPending {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "contest can no longer be modified"})
	}
	return &contest, nil
}

// UpdateContest edits a contest's content. Owner-only, and only while the
// contest is still pending moderation.
func (s *ContestService) UpdateContest(c *fiber.Ctx) error {
	contest, err := s.loadOwnedPending(c, c.Params("id"))
	if contest == nil {
		return err
	}

	var req struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		Task        *string    `json:"task"`
		Category    *string    `json:"category"`
		ImageURL    *string    `json:"image_url"`
		Price       *float64   `json:"price"`
		PrizeMoney  *float64   `json:"prize_money"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name cannot be empty"})
		}
		updates["name"] = *req.Name
		updates["slug"] = slug.Make(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Task != nil {
		updates["task"] = *req.Task
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be non-negative"})
		}
		updates["price"] = *req.Price
	}
	if req.PrizeMoney != nil {
		if *req.PrizeMoney < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "prize_money must be non-negative"})
		}
		updates["prize_money"] = *req.PrizeMoney
	}
	if req.Deadline != nil {
		updates["deadline"] = *req.Deadline
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nothing to update"})
	}

	if err := s.DB.Model(contest).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update contest"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteContest removes a contest. Owner-only, pending-only — once a contest
// is moderated only an admin can delete it.
func (s *ContestService) DeleteContest(c *fiber.Ctx) error {
	contest, err := s.loadOwnedPending(c, c.Params("id"))
	if contest == nil {
		return err
	}

	if err := s.DB.Delete(contest).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete contest"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeclareWinner records the winning participant. Owner-only, at most once.
func (s *ContestService) DeclareWinner(c *fiber.Ctx) error {
	var req struct {
		UID string `json:"uid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "uid is required"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}
	if contest.CreatorUID != middleware.AuthUID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: not your contest"})
	}
	if contest.HasWinner() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "winner already declared"})
	}

	now := time.Now()
	if err := s.DB.Model(&contest).Updates(map[string]interface{}{
		"winner_uid":         req.UID,
		"winner_declared_at": &now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to declare winner"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// AdminContests is the moderation queue: every contest, every status.
func (s *ContestService) AdminContests(c *fiber.Ctx) error {
	var contests []models.Contest
	if err := s.DB.Order("created_at DESC").Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list contests"})
	}

	return c.JSON(contests)
}

// ModerateContest applies an admin action: approve, reject or delete.
func (s *ContestService) ModerateContest(c *fiber.Ctx) error {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var newStatus string
	switch req.Action {
	case "approve":
		newStatus = models.ContestApproved
	case "reject":
		newStatus = models.ContestRejected
	case "delete":
		// handled below
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid action"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load contest"})
	}

	if req.Action == "delete" {
		if err := s.DB.Delete(&contest).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete contest"})
		}
		return c.JSON(fiber.Map{"success": true})
	}

	// Approve and reject only move a contest out of the moderation queue;
	// neither is reversible once the verdict is in.
	if contest.Status != models.ContestPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contest already moderated"})
	}

	if err := s.DB.Model(&contest).Update("status", newStatus).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}

	return c.JSON(fiber.Map{"success": true, "status": newStatus})
}

// UploadContestImage uploads a cover image to R2 and stores the public URL
// on the contest. Owner-only, pending-only, like every other content edit.
func (s *ContestService) UploadContestImage(c *fiber.Ctx) error {
	contest, err := s.loadOwnedPending(c, c.Params("id"))
	if contest == nil {
		return err
	}

	image, err := c.FormFile("image")
	if err != nil || image.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}

	ext := filepath.Ext(image.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "contests/" + uuid.NewString() + ext

	url, err := s.Uploader.Upload(image, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload image"})
	}

	if err := s.DB.Model(contest).Update("image_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save image url"})
	}

	return c.JSON(fiber.Map{"success": true, "image_url": url})
}
