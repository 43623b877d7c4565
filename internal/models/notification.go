package models

import "time"

// Notification types.
const (
	NotificationVote         = "vote"
	NotificationStatusUpdate = "status_update"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // vote, status_update
	RecipientID string    `json:"recipientId" gorm:"size:128;index"`
	ActorID     string    `json:"actorId,omitempty" gorm:"size:128"`
	IssueID     string    `json:"issueId" gorm:"size:64"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}
