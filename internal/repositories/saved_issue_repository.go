package repositories

import (
	"context"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SavedIssueRepository defines the interface for saved issue operations
type SavedIssueRepository interface {
	SaveIssue(ctx context.Context, saved *models.SavedIssue) error
	UnsaveIssue(ctx context.Context, userID, issueID string) error
	IsIssueSaved(ctx context.Context, userID, issueID string) (bool, error)
	GetSavedIssuesByUser(ctx context.Context, userID string) ([]models.SavedIssue, error)
}

// PostgresSavedIssueRepository implements SavedIssueRepository
type PostgresSavedIssueRepository struct {
	db *gorm.DB
}

func NewPostgresSavedIssueRepository(db *gorm.DB) *PostgresSavedIssueRepository {
	return &PostgresSavedIssueRepository{db: db}
}

func (r *PostgresSavedIssueRepository) SaveIssue(ctx context.Context, saved *models.SavedIssue) error {
	err := r.db.WithContext(ctx).Create(saved).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(apperrors.ErrConflict, "issue already saved")
	}
	return err
}

func (r *PostgresSavedIssueRepository) UnsaveIssue(ctx context.Context, userID, issueID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND issue_id = ?", userID, issueID).Delete(&models.SavedIssue{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("saved issue")
	}
	return nil
}

func (r *PostgresSavedIssueRepository) IsIssueSaved(ctx context.Context, userID, issueID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedIssue{}).Where("user_id = ? AND issue_id = ?", userID, issueID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresSavedIssueRepository) GetSavedIssuesByUser(ctx context.Context, userID string) ([]models.SavedIssue, error) {
	var saved []models.SavedIssue
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}
