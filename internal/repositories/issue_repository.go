package repositories

import (
	"context"
	"sort"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultListLimit = 50

// IssueRepository is the document-store contract for issues. Issues are spread
// over models.IssueCollections; lookups by id search them in order.
type IssueRepository interface {
	CreateIssue(ctx context.Context, issue *models.Issue) error
	FindIssue(ctx context.Context, id string) (*models.Issue, error)
	ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	CountIssues(ctx context.Context, filter models.IssueFilter) (int64, error)
	// UpdateStatus is a plain single-document write, not isolated from vote tallies.
	UpdateStatus(ctx context.Context, ref models.IssueRef, status models.IssueStatus) error
	// CountByReporter returns the number of profiled issues per reporter id.
	CountByReporter(ctx context.Context) (map[string]int64, error)
}

// collectionsFor narrows the searched collections: reporter filters only make
// sense for profiled issues.
func collectionsFor(filter models.IssueFilter) []string {
	if filter.ReporterID != "" {
		return []string{models.ProfiledIssues}
	}
	return models.IssueCollections
}

func validCollection(name string) bool {
	for _, c := range models.IssueCollections {
		if c == name {
			return true
		}
	}
	return false
}

// listAcross queries every relevant collection in parallel and merges the results.
func listAcross(ctx context.Context, filter models.IssueFilter, fetch func(ctx context.Context, collection string) ([]models.Issue, error)) ([]models.Issue, error) {
	collections := collectionsFor(filter)
	results := make([][]models.Issue, len(collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range collections {
		i, coll := i, coll
		g.Go(func() error {
			issues, err := fetch(gctx, coll)
			if err != nil {
				return err
			}
			for j := range issues {
				issues[j].Collection = coll
			}
			results[i] = issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeIssues(results, filter.Sort, listLimit(filter)), nil
}

// countAcross sums a per-collection count.
func countAcross(ctx context.Context, filter models.IssueFilter, count func(ctx context.Context, collection string) (int64, error)) (int64, error) {
	collections := collectionsFor(filter)
	counts := make([]int64, len(collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range collections {
		i, coll := i, coll
		g.Go(func() error {
			n, err := count(gctx, coll)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func listLimit(filter models.IssueFilter) int64 {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}

// MergeIssues combines per-collection results and re-applies the ordering and
// limit, since each collection was sorted on its own.
func MergeIssues(lists [][]models.Issue, order string, limit int64) []models.Issue {
	merged := make([]models.Issue, 0)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if order == models.SortVotes && merged[i].VoteCount != merged[j].VoteCount {
			return merged[i].VoteCount > merged[j].VoteCount
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if limit > 0 && int64(len(merged)) > limit {
		merged = merged[:limit]
	}
	return merged
}

// statusesOf returns the status values a filter matches, nil meaning any.
func statusesOf(filter models.IssueFilter) []models.IssueStatus {
	if filter.Status != "" {
		return []models.IssueStatus{filter.Status}
	}
	return filter.Statuses
}
