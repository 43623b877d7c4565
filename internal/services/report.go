package services

import (
	"context"
	"fmt"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	ReportProfiled  = "profiled"
	ReportAnonymous = "anonymous"

	issueImageFolder = "issues"
)

// ImageHost stores an uploaded file and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error)
}

// Image is an uploaded file that already passed type and size checks.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Reports creates and reads issues.
type Reports struct {
	issues repositories.IssueRepository
	users  repositories.UserRepository
	images ImageHost
	log    *zap.Logger
}

func NewReports(issues repositories.IssueRepository, users repositories.UserRepository, images ImageHost, log *zap.Logger) *Reports {
	return &Reports{issues: issues, users: users, images: images, log: log}
}

// Submit uploads the images and stores a new Pending issue. Profiled reports
// need a session and carry the reporter's details; anonymous ones carry none.
func (r *Reports) Submit(ctx context.Context, session *models.Session, req models.CreateIssueRequest, images []Image) (*models.Issue, error) {
	issue := &models.Issue{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		State:       req.State,
		District:    req.District,
		Address:     fmt.Sprintf("%s, %s", req.StreetAddress, req.CityInfo),
		Status:      models.StatusPending,
		ImageURLs:   []string{},
	}
	if req.Latitude != nil && req.Longitude != nil {
		issue.Location = &models.GeoPoint{Lat: *req.Latitude, Lng: *req.Longitude}
	}

	switch req.ReportType {
	case ReportProfiled:
		if session == nil || session.UserID == "" {
			return nil, errors.Wrap(apperrors.ErrAuthenticationRequired, "sign in to submit a profiled report")
		}
		issue.Collection = models.ProfiledIssues
		issue.ReporterID = session.UserID
		issue.ReporterName = session.Name
		issue.ReporterEmail = session.Email
		if user, err := r.users.GetUserByUID(ctx, session.UserID); err == nil {
			issue.AvatarURL = user.PhotoURL
			if user.DisplayName != "" {
				issue.ReporterName = user.DisplayName
			}
		}
	case ReportAnonymous:
		issue.Collection = models.AnonymousIssues
	default:
		return nil, apperrors.Invalid("reportType must be profiled or anonymous")
	}

	if len(images) > 0 && r.images == nil {
		return nil, apperrors.Upstream(errors.New("no image host configured"), "upload image")
	}
	for _, img := range images {
		url, err := r.images.Upload(ctx, issueImageFolder, img.Filename, img.ContentType, img.Data)
		if err != nil {
			return nil, apperrors.Upstream(err, "upload image")
		}
		issue.ImageURLs = append(issue.ImageURLs, url)
	}

	if err := r.issues.CreateIssue(ctx, issue); err != nil {
		return nil, err
	}
	r.log.Info("issue reported",
		zap.String("issue", issue.ID),
		zap.String("collection", issue.Collection),
		zap.String("category", issue.Category),
		zap.Int("images", len(issue.ImageURLs)),
	)
	return issue, nil
}

func (r *Reports) Get(ctx context.Context, id string) (*models.Issue, error) {
	return r.issues.FindIssue(ctx, id)
}

// List returns issues matching filter across both collections.
func (r *Reports) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.Sort != "" && filter.Sort != models.SortNewest && filter.Sort != models.SortVotes {
		return nil, apperrors.Invalid("sort must be newest or votes")
	}
	return r.issues.ListIssues(ctx, filter)
}
