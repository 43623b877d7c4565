package services

import (
	"context"
	"fmt"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"go.uber.org/zap"
)

// Ledger keeps one vote per (issue, user) and the issue's aggregate count in
// step. Every surface that votes goes through CastVote.
type Ledger struct {
	issues repositories.IssueRepository
	votes  repositories.VoteRepository
	notify notifier
	log    *zap.Logger
}

func NewLedger(issues repositories.IssueRepository, votes repositories.VoteRepository, notifications repositories.NotificationRepository, log *zap.Logger) *Ledger {
	return &Ledger{
		issues: issues,
		votes:  votes,
		notify: notifier{repo: notifications, log: log},
		log:    log,
	}
}

// Apply returns the count and the caller's vote after casting cast on top of
// prior. Repeating a vote withdraws it; switching moves the count by two.
func Apply(count int64, prior, cast models.VoteDirection) (int64, models.VoteDirection) {
	if prior == cast {
		return count - cast.Weight(), models.VoteNone
	}
	return count - prior.Weight() + cast.Weight(), cast
}

// CastVote records the caller's vote on issueID. The count and the vote record
// are written in one store transaction; the reporter's notification is sent
// afterwards and never undoes the vote.
func (l *Ledger) CastVote(ctx context.Context, session *models.Session, issueID string, direction models.VoteDirection) (*models.Tally, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	if !direction.Valid() {
		return nil, apperrors.Invalid("direction must be up or down")
	}

	issue, err := l.issues.FindIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	tally, err := l.votes.Tally(ctx, issue.Ref(), session.UserID, func(count int64, prior models.VoteDirection) (int64, models.VoteDirection) {
		return Apply(count, prior, direction)
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug("vote recorded",
		zap.String("issue", issue.ID),
		zap.String("user", session.UserID),
		zap.String("direction", string(direction)),
		zap.Int64("votes", tally.VoteCount),
	)

	if !issue.Anonymous() && issue.ReporterID != session.UserID {
		l.notify.send(ctx, &models.Notification{
			Type:        models.NotificationVote,
			RecipientID: issue.ReporterID,
			ActorID:     session.UserID,
			IssueID:     issue.ID,
			Message:     voteMessage(session.DisplayName(), direction, issue.Title),
		})
	}
	return tally, nil
}

// MyVote reports the issue's count and the caller's current vote.
func (l *Ledger) MyVote(ctx context.Context, session *models.Session, issueID string) (*models.Tally, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	issue, err := l.issues.FindIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	direction, err := l.votes.GetVote(ctx, issue.Ref(), session.UserID)
	if err != nil {
		return nil, err
	}
	return &models.Tally{IssueID: issue.ID, VoteCount: issue.VoteCount, Vote: direction}, nil
}

// Audit recounts the vote records of an issue and compares them with its
// stored count.
func (l *Ledger) Audit(ctx context.Context, issueID string) (*models.VoteAudit, error) {
	issue, err := l.issues.FindIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	up, down, err := l.votes.CountVotes(ctx, issue.Ref())
	if err != nil {
		return nil, err
	}

	audit := &models.VoteAudit{
		IssueID:    issue.ID,
		VoteCount:  issue.VoteCount,
		Up:         up,
		Down:       down,
		Consistent: issue.VoteCount == up-down,
	}
	if !audit.Consistent {
		l.log.Warn("vote count drift",
			zap.String("issue", issue.ID),
			zap.Int64("votes", issue.VoteCount),
			zap.Int64("up", up),
			zap.Int64("down", down),
		)
	}
	return audit, nil
}

func voteMessage(voter string, direction models.VoteDirection, title string) string {
	verb := "upvoted"
	if direction == models.VoteDown {
		verb = "downvoted"
	}
	return fmt.Sprintf("%s %s your issue: \"%s\"", voter, verb, title)
}
