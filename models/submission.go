package models

import (
	"time"
)

// Submission is a participant's task entry for a contest. At most one per
// (uid, contest) pair, and only after a matching Payment exists.
type Submission struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ContestID string `json:"contest_id" gorm:"not null;index;uniqueIndex:idx_submission_contest_user"`
	UID       string `json:"uid" gorm:"not null;uniqueIndex:idx_submission_contest_user"`

	// Denormalized submitter details for the creator's review screen
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`

	Task        string    `json:"task"` // free-form payload (link, text, etc.)
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
