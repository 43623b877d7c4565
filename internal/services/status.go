package services

import (
	"context"
	"fmt"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"go.uber.org/zap"
)

// StatusWorkflow moves issues through Pending, Confirmation, Acknowledgment and
// Resolution. Any state may be set from any other. Callers are expected to
// have checked that the actor is an admin.
type StatusWorkflow struct {
	issues repositories.IssueRepository
	notify notifier
	log    *zap.Logger
}

func NewStatusWorkflow(issues repositories.IssueRepository, notifications repositories.NotificationRepository, log *zap.Logger) *StatusWorkflow {
	return &StatusWorkflow{
		issues: issues,
		notify: notifier{repo: notifications, log: log},
		log:    log,
	}
}

// SetStatus overwrites the issue's status. The write is not part of any vote
// transaction. The reporter is notified when the status actually changes.
func (w *StatusWorkflow) SetStatus(ctx context.Context, actor *models.Session, issueID string, status models.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown status %q", status))
	}

	issue, err := w.issues.FindIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	previous := issue.Status

	if err := w.issues.UpdateStatus(ctx, issue.Ref(), status); err != nil {
		return nil, err
	}
	issue.Status = status

	var actorID string
	if actor != nil {
		actorID = actor.UserID
	}
	w.log.Info("issue status updated",
		zap.String("issue", issue.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.String("actor", actorID),
	)

	if !issue.Anonymous() && status != previous {
		w.notify.send(ctx, &models.Notification{
			Type:        models.NotificationStatusUpdate,
			RecipientID: issue.ReporterID,
			ActorID:     actorID,
			IssueID:     issue.ID,
			Message:     fmt.Sprintf("The status of your issue \"%s\" has changed from %s to %s.", issue.Title, previous, status),
		})
	}
	return issue, nil
}
