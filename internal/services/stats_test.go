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
)

func seedDashboard(t *testing.T) (*Dashboard, *repotest.Applications) {
	t.Helper()
	ctx := context.Background()
	store := repotest.NewDocumentStore()
	store.Seed(models.Issue{ReporterID: "u1", State: "Kerala", District: "Ernakulam", Status: models.StatusPending})
	store.Seed(models.Issue{ReporterID: "u1", State: "Kerala", District: "Ernakulam", Status: models.StatusResolution})
	store.Seed(models.Issue{ReporterID: "u2", State: "Kerala", District: "Thrissur", Status: models.StatusAcknowledgment})
	store.Seed(models.Issue{Collection: models.AnonymousIssues, State: "Kerala", District: "Ernakulam", Status: models.StatusConfirmation})
	store.Seed(models.Issue{ReporterID: "ghost", State: "Goa", District: "North Goa"})

	users := &repotest.Users{}
	require.NoError(t, users.CreateUser(ctx, &models.User{UID: "u1", DisplayName: "Asha", Email: "asha@example.com"}))
	require.NoError(t, users.CreateUser(ctx, &models.User{UID: "u2", Email: "ravi@example.com"}))

	apps := &repotest.Applications{}
	require.NoError(t, apps.CreateApplication(ctx, &models.AdminApplication{UserID: "a1"}))
	return NewDashboard(store, users, apps), apps
}

func TestStatsDistrictAdminIsPinned(t *testing.T) {
	d, _ := seedDashboard(t)

	// asking for another state is ignored
	stats, err := d.Stats(context.Background(), admin, models.LocationFilter{State: "Goa"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalIssues)
	assert.Equal(t, int64(1), stats.ResolvedIssues)
	assert.Equal(t, int64(2), stats.PendingIssues)
	assert.Zero(t, stats.PendingApprovals)
}

func TestStatsSuperAdmin(t *testing.T) {
	d, _ := seedDashboard(t)
	super := &models.Session{UserID: "root", Role: models.RoleSuperAdmin}

	stats, err := d.Stats(context.Background(), super, models.LocationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalIssues)
	assert.Equal(t, int64(1), stats.ResolvedIssues)
	assert.Equal(t, int64(4), stats.PendingIssues)
	assert.Equal(t, int64(1), stats.PendingApprovals)

	stats, err = d.Stats(context.Background(), super, models.LocationFilter{State: "Kerala", District: "Thrissur"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalIssues)
}

func TestStatsRequiresAdmin(t *testing.T) {
	d, _ := seedDashboard(t)
	_, err := d.Stats(context.Background(), &models.Session{UserID: "u1", Role: models.RoleCitizen}, models.LocationFilter{})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestLeaderboard(t *testing.T) {
	d, _ := seedDashboard(t)

	entries, err := d.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	// ghost has issues but no profile
	require.Len(t, entries, 2)
	assert.Equal(t, "u1", entries[0].UID)
	assert.Equal(t, int64(2), entries[0].IssueCount)
	assert.Equal(t, "u2", entries[1].UID)
	assert.Equal(t, "N/A", entries[1].DisplayName)

	entries, err = d.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLeaderboardEmpty(t *testing.T) {
	d := NewDashboard(repotest.NewDocumentStore(), &repotest.Users{}, &repotest.Applications{})
	entries, err := d.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
