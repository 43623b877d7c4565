// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/pkg/errors"
)

// DocumentStore implements IssueRepository and VoteRepository over maps. A
// single mutex makes every Tally atomic.
type DocumentStore struct {
	mu     sync.Mutex
	issues map[models.IssueRef]models.Issue
	votes  map[string]models.VoteDirection
	seq    int

	// TallyErr, when set, fails Tally before anything is read or written.
	TallyErr error
	// StatusErr, when set, fails UpdateStatus.
	StatusErr error
}

var (
	_ repositories.IssueRepository = (*DocumentStore)(nil)
	_ repositories.VoteRepository  = (*DocumentStore)(nil)
)

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		issues: make(map[models.IssueRef]models.Issue),
		votes:  make(map[string]models.VoteDirection),
	}
}

// Seed stores issue as is, keeping its id, count and creation time.
func (s *DocumentStore) Seed(issue models.Issue) models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issue.Collection == "" {
		issue.Collection = models.ProfiledIssues
	}
	if issue.ID == "" {
		s.seq++
		issue.ID = fmt.Sprintf("issue-%d", s.seq)
	}
	if issue.Status == "" {
		issue.Status = models.StatusPending
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now().UTC()
	}
	s.issues[issue.Ref()] = issue
	return issue
}

// Issue returns the stored copy of ref.
func (s *DocumentStore) Issue(ref models.IssueRef) (models.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[ref]
	return issue, ok
}

func (s *DocumentStore) CreateIssue(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	s.seq++
	issue.ID = fmt.Sprintf("issue-%d", s.seq)
	s.mu.Unlock()
	issue.CreatedAt = time.Now().UTC()
	*issue = s.Seed(*issue)
	return nil
}

func (s *DocumentStore) FindIssue(_ context.Context, id string) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coll := range models.IssueCollections {
		if issue, ok := s.issues[models.IssueRef{Collection: coll, ID: id}]; ok {
			return &issue, nil
		}
	}
	return nil, apperrors.NotFound("issue")
}

func (s *DocumentStore) ListIssues(_ context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Issue
	for _, issue := range s.issues {
		if matches(issue, filter) {
			matched = append(matched, issue)
		}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return repositories.MergeIssues([][]models.Issue{matched}, filter.Sort, limit), nil
}

func (s *DocumentStore) CountIssues(_ context.Context, filter models.IssueFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, issue := range s.issues {
		if matches(issue, filter) {
			n++
		}
	}
	return n, nil
}

func (s *DocumentStore) UpdateStatus(_ context.Context, ref models.IssueRef, status models.IssueStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StatusErr != nil {
		return s.StatusErr
	}
	issue, ok := s.issues[ref]
	if !ok {
		return apperrors.NotFound("issue")
	}
	issue.Status = status
	s.issues[ref] = issue
	return nil
}

func (s *DocumentStore) CountByReporter(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for ref, issue := range s.issues {
		if ref.Collection == models.ProfiledIssues && issue.ReporterID != "" {
			counts[issue.ReporterID]++
		}
	}
	return counts, nil
}

func (s *DocumentStore) GetVote(_ context.Context, ref models.IssueRef, userID string) (models.VoteDirection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[models.VoteKey(ref.ID, userID)], nil
}

func (s *DocumentStore) Tally(_ context.Context, ref models.IssueRef, userID string, fn repositories.TallyFunc) (*models.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TallyErr != nil {
		return nil, s.TallyErr
	}
	issue, ok := s.issues[ref]
	if !ok {
		return nil, apperrors.NotFound("issue")
	}

	key := models.VoteKey(ref.ID, userID)
	count, direction := fn(issue.VoteCount, s.votes[key])
	if direction == models.VoteNone {
		delete(s.votes, key)
	} else {
		s.votes[key] = direction
	}
	issue.VoteCount = count
	s.issues[ref] = issue
	return &models.Tally{IssueID: ref.ID, VoteCount: count, Vote: direction}, nil
}

func (s *DocumentStore) CountVotes(_ context.Context, ref models.IssueRef) (up, down int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[ref]; !ok {
		return 0, 0, apperrors.NotFound("issue")
	}
	prefix := ref.ID + ":"
	for key, d := range s.votes {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		switch d {
		case models.VoteUp:
			up++
		case models.VoteDown:
			down++
		}
	}
	return up, down, nil
}

// SetVote plants a vote record without touching the issue's count.
func (s *DocumentStore) SetVote(ref models.IssueRef, userID string, d models.VoteDirection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[models.VoteKey(ref.ID, userID)] = d
}

func matches(issue models.Issue, f models.IssueFilter) bool {
	if f.State != "" && issue.State != f.State {
		return false
	}
	if f.District != "" && issue.District != f.District {
		return false
	}
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	if f.ReporterID != "" && (issue.ReporterID != f.ReporterID || issue.Collection != models.ProfiledIssues) {
		return false
	}
	if f.Status != "" {
		return issue.Status == f.Status
	}
	if len(f.Statuses) > 0 {
		for _, st := range f.Statuses {
			if issue.Status == st {
				return true
			}
		}
		return false
	}
	return true
}

// ErrBoom is a generic failure for injecting into fakes.
var ErrBoom = errors.New("boom")
