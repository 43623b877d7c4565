package models

import "time"

// VoteDirection is a user's stance on an issue. The zero value means no vote.
type VoteDirection string

const (
	VoteNone VoteDirection = ""
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Weight is the contribution of a single vote to an issue's count.
func (d VoteDirection) Weight() int64 {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	}
	return 0
}

// Vote is the per-user vote record on an issue.
type Vote struct {
	ID        string        `json:"-" bson:"_id" firestore:"-"`
	IssueID   string        `json:"issueId" bson:"issueId" firestore:"-"`
	UserID    string        `json:"userId" bson:"userId" firestore:"-"`
	Direction VoteDirection `json:"direction" bson:"direction" firestore:"direction"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

// VoteKey is the document id of the vote a user holds on an issue.
func VoteKey(issueID, userID string) string {
	return issueID + ":" + userID
}

// Tally is the outcome of a vote: the issue's new count and the caller's stance.
type Tally struct {
	IssueID   string        `json:"issueId"`
	VoteCount int64         `json:"votes"`
	Vote      VoteDirection `json:"vote"`
}

// VoteAudit compares an issue's stored count against its vote records.
type VoteAudit struct {
	IssueID    string `json:"issueId"`
	VoteCount  int64  `json:"votes"`
	Up         int64  `json:"up"`
	Down       int64  `json:"down"`
	Consistent bool   `json:"consistent"`
}

// CastVoteRequest is the body of a vote.
type CastVoteRequest struct {
	Direction string `json:"direction" validate:"required,vote_direction"`
}
