package repositories

import (
	"context"

	"github.com/anonto42/civic-connect/backend/internal/models"
)

// TallyFunc computes the new tally from the stored one. It must be pure: the
// store may call it more than once while retrying a transaction.
type TallyFunc func(count int64, prior models.VoteDirection) (int64, models.VoteDirection)

// VoteRepository stores one vote per (issue, user) next to the issue's
// aggregate count.
type VoteRepository interface {
	GetVote(ctx context.Context, ref models.IssueRef, userID string) (models.VoteDirection, error)
	// Tally reads the issue count and the caller's vote, applies fn, and writes
	// both results back in a single transaction. Nothing is written on error.
	Tally(ctx context.Context, ref models.IssueRef, userID string, fn TallyFunc) (*models.Tally, error)
	CountVotes(ctx context.Context, ref models.IssueRef) (up, down int64, err error)
}
