package models

import (
	"time"
)

// Roles recognised by the platform. Checks are exact-match: an admin is not
// implicitly a creator.
const (
	RoleUser    = "user"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the three platform roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleCreator || role == RoleAdmin
}

// User is the local record for an identity-provider principal.
// Created on first sign-in; the role is only ever changed by an admin.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UID         string    `json:"uid" gorm:"uniqueIndex;not null"` // identity provider subject id
	Email       string    `json:"email" gorm:"not null"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url"`
	Address     string    `json:"address,omitempty"`
	Role        string    `json:"role" gorm:"default:'user'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
