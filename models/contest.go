package models

import (
	"time"
)

// Contest moderation states. Transitions are pending → approved or
// pending → rejected, admin-only.
const (
	ContestPending  = "pending"
	ContestApproved = "approved"
	ContestRejected = "rejected"
)

// Contest is a creator-authored competition with an entry price, a deadline
// and (eventually) a single winner.
type Contest struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"index"`
	Description string    `json:"description"`
	Task        string    `json:"task"` // what participants are asked to deliver
	Category    string    `json:"category" gorm:"index"`
	ImageURL    string    `json:"image_url"`
	Price       float64   `json:"price" gorm:"default:0"`       // entry fee
	PrizeMoney  float64   `json:"prize_money" gorm:"default:0"` // paid out to the winner
	Deadline    time.Time `json:"deadline" gorm:"not null"`

	CreatorUID   string `json:"creator_uid" gorm:"not null;index"`
	CreatorEmail string `json:"creator_email"`

	Status       string `json:"status" gorm:"default:'pending';index"`
	Participants int    `json:"participants" gorm:"default:0"` // incremented only by successful payment

	WinnerUID        string     `json:"winner_uid,omitempty"`
	WinnerDeclaredAt *time.Time `json:"winner_declared_at,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasWinner reports whether a winner has been declared. Winners are
// declared at most once per contest.
func (c *Contest) HasWinner() bool {
	return c.WinnerDeclaredAt != nil
}
