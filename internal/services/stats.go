package services

import (
	"context"
	"sort"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// Dashboard computes the read-side summaries shown to admins and citizens.
type Dashboard struct {
	issues repositories.IssueRepository
	users  repositories.UserRepository
	apps   repositories.AdminApplicationRepository
}

func NewDashboard(issues repositories.IssueRepository, users repositories.UserRepository, apps repositories.AdminApplicationRepository) *Dashboard {
	return &Dashboard{issues: issues, users: users, apps: apps}
}

// Stats counts issues in the caller's scope. District admins always see their
// own district whatever location they ask for.
func (d *Dashboard) Stats(ctx context.Context, session *models.Session, requested models.LocationFilter) (*models.DashboardStats, error) {
	if !session.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	scope := session.Scope(requested)
	base := models.IssueFilter{State: scope.State, District: scope.District}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalIssues, err = d.issues.CountIssues(gctx, base)
		return err
	})
	g.Go(func() (err error) {
		f := base
		f.Status = models.StatusResolution
		stats.ResolvedIssues, err = d.issues.CountIssues(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		f := base
		f.Statuses = openStatuses()
		stats.PendingIssues, err = d.issues.CountIssues(gctx, f)
		return err
	})
	if session.IsSuperAdmin() {
		g.Go(func() (err error) {
			stats.PendingApprovals, err = d.apps.CountByStatus(gctx, models.ApplicationPending)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Leaderboard ranks reporters with a profile by their number of profiled
// issues, highest first.
func (d *Dashboard) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	counts, err := d.issues.CountByReporter(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.LeaderboardEntry, 0, len(counts))
	if len(counts) == 0 {
		return entries, nil
	}

	uids := make([]string, 0, len(counts))
	for uid := range counts {
		uids = append(uids, uid)
	}
	users, err := d.users.GetUsersByUIDs(ctx, uids)
	if err != nil {
		return nil, err
	}

	for i := range users {
		entry := models.LeaderboardEntry{
			UserCompact: users[i].ToCompact(),
			Email:       users[i].Email,
			State:       users[i].State,
			District:    users[i].District,
			IssueCount:  counts[users[i].UID],
		}
		if entry.DisplayName == "" {
			entry.DisplayName = "N/A"
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IssueCount != entries[j].IssueCount {
			return entries[i].IssueCount > entries[j].IssueCount
		}
		return entries[i].UID < entries[j].UID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func openStatuses() []models.IssueStatus {
	var open []models.IssueStatus
	for _, s := range models.IssueStatuses {
		if s.Open() {
			open = append(open, s)
		}
	}
	return open
}
