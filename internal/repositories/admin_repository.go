package repositories

import (
	"context"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AdminApplicationRepository stores district-admin applications, one per user.
type AdminApplicationRepository interface {
	CreateApplication(ctx context.Context, app *models.AdminApplication) error
	GetApplication(ctx context.Context, id uint) (*models.AdminApplication, error)
	GetApplicationByUserID(ctx context.Context, userID string) (*models.AdminApplication, error)
	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.AdminApplication, error)
	CountByStatus(ctx context.Context, status models.ApplicationStatus) (int64, error)
	// Decide moves a pending application to status. Deciding an application
	// that is no longer pending fails with ErrConflict and changes nothing.
	Decide(ctx context.Context, id uint, status models.ApplicationStatus) (*models.AdminApplication, error)
}

type PostgresAdminApplicationRepository struct {
	db *gorm.DB
}

func NewPostgresAdminApplicationRepository(db *gorm.DB) *PostgresAdminApplicationRepository {
	return &PostgresAdminApplicationRepository{db: db}
}

func (r *PostgresAdminApplicationRepository) CreateApplication(ctx context.Context, app *models.AdminApplication) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(apperrors.ErrConflict, "an application for this account already exists")
	}
	return err
}

func (r *PostgresAdminApplicationRepository) GetApplication(ctx context.Context, id uint) (*models.AdminApplication, error) {
	var app models.AdminApplication
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, notFoundAs(err, "application")
	}
	return &app, nil
}

func (r *PostgresAdminApplicationRepository) GetApplicationByUserID(ctx context.Context, userID string) (*models.AdminApplication, error) {
	var app models.AdminApplication
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&app).Error; err != nil {
		return nil, notFoundAs(err, "application")
	}
	return &app, nil
}

// ListApplications returns newest first. An empty status lists all.
func (r *PostgresAdminApplicationRepository) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.AdminApplication, error) {
	var apps []models.AdminApplication
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&apps).Error
	return apps, err
}

func (r *PostgresAdminApplicationRepository) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminApplication{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *PostgresAdminApplicationRepository) Decide(ctx context.Context, id uint, status models.ApplicationStatus) (*models.AdminApplication, error) {
	res := r.db.WithContext(ctx).Model(&models.AdminApplication{}).
		Where("id = ? AND status = ?", id, models.ApplicationPending).
		Updates(map[string]interface{}{"status": status, "decided_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		app, err := r.GetApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(apperrors.ErrConflict, "application already %s", app.Status)
	}
	return r.GetApplication(ctx, id)
}
