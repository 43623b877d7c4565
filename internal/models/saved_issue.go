package models

import "time"

// SavedIssue represents an issue bookmarked by a user
type SavedIssue struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"size:128;index;uniqueIndex:idx_user_issue_save"`
	IssueID   string    `json:"issueId" gorm:"size:64;index;uniqueIndex:idx_user_issue_save"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
