package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIssuesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	profiled := []models.Issue{{ID: "p2", CreatedAt: base.Add(2 * time.Hour)}, {ID: "p1", CreatedAt: base}}
	anonymous := []models.Issue{{ID: "a1", CreatedAt: base.Add(time.Hour)}}

	merged := MergeIssues([][]models.Issue{profiled, anonymous}, models.SortNewest, 10)

	ids := make([]string, len(merged))
	for i, issue := range merged {
		ids[i] = issue.ID
	}
	assert.Equal(t, []string{"p2", "a1", "p1"}, ids)
}

func TestMergeIssuesByVotesAppliesLimit(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	profiled := []models.Issue{{ID: "p1", VoteCount: 3, CreatedAt: base}, {ID: "p2", VoteCount: -1, CreatedAt: base}}
	anonymous := []models.Issue{{ID: "a1", VoteCount: 5, CreatedAt: base}, {ID: "a2", VoteCount: 3, CreatedAt: base.Add(time.Minute)}}

	merged := MergeIssues([][]models.Issue{profiled, anonymous}, models.SortVotes, 3)

	require.Len(t, merged, 3)
	assert.Equal(t, "a1", merged[0].ID)
	// equal counts fall back to newest first
	assert.Equal(t, "a2", merged[1].ID)
	assert.Equal(t, "p1", merged[2].ID)
}

func TestMergeIssuesEmpty(t *testing.T) {
	merged := MergeIssues(nil, models.SortNewest, 10)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestListAcrossReporterOnlyQueriesProfiled(t *testing.T) {
	var queried []string
	fetch := func(_ context.Context, coll string) ([]models.Issue, error) {
		queried = append(queried, coll)
		return []models.Issue{{ID: coll + "-1"}}, nil
	}

	issues, err := listAcross(context.Background(), models.IssueFilter{ReporterID: "u1"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ProfiledIssues}, queried)
	require.Len(t, issues, 1)
	assert.Equal(t, models.ProfiledIssues, issues[0].Collection)
}

func TestCountAcrossSumsCollections(t *testing.T) {
	count := func(_ context.Context, coll string) (int64, error) {
		if coll == models.ProfiledIssues {
			return 4, nil
		}
		return 3, nil
	}
	n, err := countAcross(context.Background(), models.IssueFilter{}, count)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestMongoIssueFilter(t *testing.T) {
	f := mongoIssueFilter(models.IssueFilter{
		State:    "Kerala",
		Statuses: []models.IssueStatus{models.StatusPending, models.StatusConfirmation},
	})
	assert.Equal(t, "Kerala", f["state"])
	assert.NotContains(t, f, "district")
	assert.Contains(t, f, "status")

	single := mongoIssueFilter(models.IssueFilter{Status: models.StatusResolution, Statuses: models.IssueStatuses})
	assert.Equal(t, models.StatusResolution, single["status"])
}
