// Package services holds the business rules that sit between HTTP handlers and
// the repositories: the vote ledger, the issue status workflow, admin
// applications, reporting and the read-side dashboards.
package services

import (
	"context"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"go.uber.org/zap"
)

// notifier writes notifications on a best-effort basis. A failed write is
// logged and otherwise ignored.
type notifier struct {
	repo repositories.NotificationRepository
	log  *zap.Logger
}

func (n notifier) send(ctx context.Context, notification *models.Notification) {
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		n.log.Warn("failed to create notification",
			zap.String("type", notification.Type),
			zap.String("recipient", notification.RecipientID),
			zap.String("issue", notification.IssueID),
			zap.Error(err),
		)
	}
}
