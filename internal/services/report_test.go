package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories/repotest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeImageHost struct {
	mu       sync.Mutex
	uploaded []string
	err      error
}

func (h *fakeImageHost) Upload(_ context.Context, folder, filename, _ string, _ []byte) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploaded = append(h.uploaded, folder+"/"+filename)
	return "https://images.example.com/" + folder + "/" + filename, nil
}

func reportRequest(reportType string) models.CreateIssueRequest {
	lat, lng := 9.98, 76.28
	return models.CreateIssueRequest{
		Title:         "Broken streetlight",
		Description:   "The streetlight at the junction has been off for a week.",
		Category:      "Streetlight",
		State:         "Kerala",
		District:      "Ernakulam",
		StreetAddress: "MG Road",
		CityInfo:      "Kochi 682016",
		Latitude:      &lat,
		Longitude:     &lng,
		ReportType:    reportType,
	}
}

func TestSubmitProfiled(t *testing.T) {
	store := repotest.NewDocumentStore()
	users := &repotest.Users{}
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "u1", DisplayName: "Asha K", Email: "asha@example.com", PhotoURL: "https://img/asha.png"}))
	host := &fakeImageHost{}
	r := NewReports(store, users, host, zap.NewNop())

	issue, err := r.Submit(context.Background(), &models.Session{UserID: "u1", Name: "Asha", Email: "asha@example.com"}, reportRequest(ReportProfiled), []Image{
		{Filename: "light.jpg", ContentType: "image/jpeg", Data: []byte{0xff}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProfiledIssues, issue.Collection)
	assert.Equal(t, "u1", issue.ReporterID)
	assert.Equal(t, "Asha K", issue.ReporterName)
	assert.Equal(t, "https://img/asha.png", issue.AvatarURL)
	assert.Equal(t, "MG Road, Kochi 682016", issue.Address)
	assert.Equal(t, models.StatusPending, issue.Status)
	assert.Zero(t, issue.VoteCount)
	require.NotNil(t, issue.Location)
	assert.InDelta(t, 9.98, issue.Location.Lat, 1e-9)
	assert.Equal(t, []string{"https://images.example.com/issues/light.jpg"}, issue.ImageURLs)

	found, err := r.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, found.Title)
}

func TestSubmitAnonymous(t *testing.T) {
	store := repotest.NewDocumentStore()
	r := NewReports(store, &repotest.Users{}, &fakeImageHost{}, zap.NewNop())

	issue, err := r.Submit(context.Background(), &models.Session{UserID: "u1"}, reportRequest(ReportAnonymous), nil)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousIssues, issue.Collection)
	assert.True(t, issue.Anonymous())
	assert.Empty(t, issue.ReporterEmail)
	assert.NotNil(t, issue.ImageURLs)
}

func TestSubmitProfiledNeedsSession(t *testing.T) {
	r := NewReports(repotest.NewDocumentStore(), &repotest.Users{}, &fakeImageHost{}, zap.NewNop())
	_, err := r.Submit(context.Background(), nil, reportRequest(ReportProfiled), nil)
	assert.True(t, errors.Is(err, apperrors.ErrAuthenticationRequired))
}

func TestSubmitUploadFailureStoresNothing(t *testing.T) {
	store := repotest.NewDocumentStore()
	r := NewReports(store, &repotest.Users{}, &fakeImageHost{err: repotest.ErrBoom}, zap.NewNop())

	_, err := r.Submit(context.Background(), nil, reportRequest(ReportAnonymous), []Image{{Filename: "a.png", Data: []byte{1}}})
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))

	n, err := store.CountIssues(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListValidatesFilter(t *testing.T) {
	r := NewReports(repotest.NewDocumentStore(), &repotest.Users{}, nil, zap.NewNop())

	_, err := r.List(context.Background(), models.IssueFilter{Status: "Closed"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	_, err = r.List(context.Background(), models.IssueFilter{Sort: "random"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestListFiltersAcrossCollections(t *testing.T) {
	store := repotest.NewDocumentStore()
	store.Seed(models.Issue{State: "Kerala", District: "Ernakulam", VoteCount: 2})
	store.Seed(models.Issue{Collection: models.AnonymousIssues, State: "Kerala", District: "Ernakulam", VoteCount: 7})
	store.Seed(models.Issue{State: "Goa", District: "North Goa", VoteCount: 9})
	r := NewReports(store, &repotest.Users{}, nil, zap.NewNop())

	issues, err := r.List(context.Background(), models.IssueFilter{State: "Kerala", Sort: models.SortVotes})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, int64(7), issues[0].VoteCount)
	assert.Equal(t, models.AnonymousIssues, issues[0].Collection)
}
