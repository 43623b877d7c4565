package services

import (
	"context"
	"testing"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories/repotest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var admin = &models.Session{UserID: "admin-1", Role: models.RoleAdmin, State: "Kerala", District: "Ernakulam"}

func newWorkflow() (*StatusWorkflow, *repotest.DocumentStore, *repotest.Notifications) {
	store := repotest.NewDocumentStore()
	notifications := &repotest.Notifications{}
	return NewStatusWorkflow(store, notifications, zap.NewNop()), store, notifications
}

func TestSetStatusNotifiesReporter(t *testing.T) {
	w, store, notifications := newWorkflow()
	issue := store.Seed(models.Issue{ReporterID: "reporter", Title: "Overflowing drain"})

	updated, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusConfirmation)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmation, updated.Status)

	stored, _ := store.Issue(issue.Ref())
	assert.Equal(t, models.StatusConfirmation, stored.Status)

	sent := notifications.All()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotificationStatusUpdate, sent[0].Type)
	assert.Equal(t, "reporter", sent[0].RecipientID)
	assert.Equal(t, "admin-1", sent[0].ActorID)
	assert.Contains(t, sent[0].Message, "Pending")
	assert.Contains(t, sent[0].Message, "Confirmation")
	assert.Equal(t, `The status of your issue "Overflowing drain" has changed from Pending to Confirmation.`, sent[0].Message)
}

func TestSetStatusMissingIssue(t *testing.T) {
	w, _, notifications := newWorkflow()

	_, err := w.SetStatus(context.Background(), admin, "missing", models.StatusResolution)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, notifications.All())
}

func TestSetStatusSameStatusIsSilent(t *testing.T) {
	w, store, notifications := newWorkflow()
	issue := store.Seed(models.Issue{ReporterID: "reporter", Status: models.StatusAcknowledgment})

	_, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusAcknowledgment)
	require.NoError(t, err)
	assert.Empty(t, notifications.All())
}

func TestSetStatusAllowsBackwardMoves(t *testing.T) {
	w, store, _ := newWorkflow()
	issue := store.Seed(models.Issue{ReporterID: "reporter", Status: models.StatusResolution})

	updated, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestSetStatusAnonymousIssue(t *testing.T) {
	w, store, notifications := newWorkflow()
	issue := store.Seed(models.Issue{Collection: models.AnonymousIssues})

	_, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusConfirmation)
	require.NoError(t, err)
	assert.Empty(t, notifications.All())
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	w, store, _ := newWorkflow()
	issue := store.Seed(models.Issue{})

	_, err := w.SetStatus(context.Background(), admin, issue.ID, models.IssueStatus("Closed"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetStatusStandsWhenNotificationFails(t *testing.T) {
	w, store, notifications := newWorkflow()
	notifications.Err = repotest.ErrBoom
	issue := store.Seed(models.Issue{ReporterID: "reporter"})

	_, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusResolution)
	require.NoError(t, err)

	stored, _ := store.Issue(issue.Ref())
	assert.Equal(t, models.StatusResolution, stored.Status)
}

func TestSetStatusWriteFailure(t *testing.T) {
	w, store, notifications := newWorkflow()
	store.StatusErr = repotest.ErrBoom
	issue := store.Seed(models.Issue{ReporterID: "reporter"})

	_, err := w.SetStatus(context.Background(), admin, issue.ID, models.StatusResolution)
	assert.Error(t, err)
	assert.Empty(t, notifications.All())
}
