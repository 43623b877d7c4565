package services

import (
	"context"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Approvals handles district-admin applications and the roles they grant.
type Approvals struct {
	apps          repositories.AdminApplicationRepository
	superAdminUID string
	log           *zap.Logger
}

func NewApprovals(apps repositories.AdminApplicationRepository, superAdminUID string, log *zap.Logger) *Approvals {
	return &Approvals{apps: apps, superAdminUID: superAdminUID, log: log}
}

// Apply files a pending application for the caller.
func (a *Approvals) Apply(ctx context.Context, session *models.Session, req models.AdminApplicationRequest) (*models.AdminApplication, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrAuthenticationRequired
	}
	app := &models.AdminApplication{
		UserID:   session.UserID,
		Name:     req.Name,
		Email:    session.Email,
		State:    req.State,
		District: req.District,
		Role:     models.RoleAdmin,
		Status:   models.ApplicationPending,
	}
	if err := a.apps.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	a.log.Info("admin application filed", zap.String("user", app.UserID), zap.Uint("application", app.ID))
	return app, nil
}

func (a *Approvals) List(ctx context.Context, status models.ApplicationStatus) ([]models.AdminApplication, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Invalid("status must be pending, approved or rejected")
	}
	return a.apps.ListApplications(ctx, status)
}

// Decide approves or rejects a pending application. Decided applications are
// terminal. No notification is sent.
func (a *Approvals) Decide(ctx context.Context, id uint, approve bool) (*models.AdminApplication, error) {
	status := models.ApplicationRejected
	if approve {
		status = models.ApplicationApproved
	}
	app, err := a.apps.Decide(ctx, id, status)
	if err != nil {
		return nil, err
	}
	a.log.Info("admin application decided", zap.Uint("application", id), zap.String("status", string(status)))
	return app, nil
}

// ResolveRole decides what an admin sign-in grants to uid: the configured super
// admin gets everything, an approved application grants its district.
func (a *Approvals) ResolveRole(ctx context.Context, uid string) (models.Role, models.LocationFilter, error) {
	if a.superAdminUID != "" && uid == a.superAdminUID {
		return models.RoleSuperAdmin, models.LocationFilter{}, nil
	}

	app, err := a.apps.GetApplicationByUserID(ctx, uid)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", models.LocationFilter{}, errors.Wrap(apperrors.ErrForbidden, "You are not registered as an admin.")
	}
	if err != nil {
		return "", models.LocationFilter{}, err
	}

	switch app.Status {
	case models.ApplicationApproved:
		return models.RoleAdmin, models.LocationFilter{State: app.State, District: app.District}, nil
	case models.ApplicationPending:
		return "", models.LocationFilter{}, errors.Wrap(apperrors.ErrForbidden, "Your application is still pending approval.")
	default:
		return "", models.LocationFilter{}, errors.Wrap(apperrors.ErrForbidden, "Your application has been rejected.")
	}
}
