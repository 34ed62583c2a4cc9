package models

import (
	"time"
)

// Payment records that a user paid a contest's entry fee. At most one per
// (uid, contest) pair; its creation drives the participant counter.
type Payment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UID       string    `json:"uid" gorm:"not null;uniqueIndex:idx_payment_user_contest"`
	ContestID string    `json:"contest_id" gorm:"not null;index;uniqueIndex:idx_payment_user_contest"`
	Email     string    `json:"email"`
	Status    string    `json:"status" gorm:"default:'succeeded'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
