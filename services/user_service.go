package services

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contest-hub-service/middleware"
	"contest-hub-service/models"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// UpsertUser handles sign-in: insert-if-absent keyed by the identity
// provider's subject id. An existing record's role and creation time are
// never overwritten.
func (s *UserService) UpsertUser(c *fiber.Ctx) error {
	var req struct {
		UID         string `json:"uid"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UID == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "uid and email required"})
	}

	user := models.User{
		ID:          uuid.NewString(),
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Role:        models.RoleUser,
		CreatedAt:   time.Now(),
	}

	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoNothing: true,
	}).Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save user"})
	}

	// Re-read so a returning user gets their stored role back, not the default.
	var stored models.User
	if err := s.DB.Where("uid = ?", req.UID).First(&stored).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	return c.JSON(fiber.Map{"success": true, "role": stored.Role})
}

// GetUser returns the caller's own profile. The path uid must match the
// authenticated subject id.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	uid := c.Params("uid")
	if uid != middleware.AuthUID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: identity mismatch"})
	}

	var user models.User
	if err := s.DB.Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	return c.JSON(user)
}

// UpdateProfile lets a user change their own display name, photo and address.
// Email, role and creation time are not touchable here.
func (s *UserService) UpdateProfile(c *fiber.Ctx) error {
	uid := c.Params("uid")
	if uid != middleware.AuthUID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: identity mismatch"})
	}

	var req struct {
		DisplayName *string `json:"displayName"`
		PhotoURL    *string `json:"photoURL"`
		Address     *string `json:"address"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nothing to update"})
	}

	res := s.DB.Model(&models.User{}).Where("uid = ?", uid).Updates(updates)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UserSummary limits the admin listing to identity/contact/role fields.
type UserSummary struct {
	ID          string    `json:"id"`
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListUsers returns all users for the admin dashboard.
func (s *UserService) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list users"})
	}

	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:          u.ID,
			UID:         u.UID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			PhotoURL:    u.PhotoURL,
			Role:        u.Role,
			CreatedAt:   u.CreatedAt,
		}
	}

	return c.JSON(res)
}

// ChangeRole sets a user's role to one of the three platform roles.
func (s *UserService) ChangeRole(c *fiber.Ctx) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !models.ValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role"})
	}

	res := s.DB.Model(&models.User{}).Where("id = ?", c.Params("id")).Update("role", req.Role)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update role"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
