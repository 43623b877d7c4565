package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/pkg/errors"
)

// Notifications is an in-memory NotificationRepository.
type Notifications struct {
	mu    sync.Mutex
	items []models.Notification

	// Err, when set, fails CreateNotification.
	Err error
}

var _ repositories.NotificationRepository = (*Notifications)(nil)

func (n *Notifications) CreateNotification(_ context.Context, notification *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	notification.ID = uint(len(n.items) + 1)
	notification.CreatedAt = time.Now().UTC()
	n.items = append(n.items, *notification)
	return nil
}

// All returns every stored notification in creation order.
func (n *Notifications) All() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.items...)
}

func (n *Notifications) GetByRecipientID(_ context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var mine []models.Notification
	for i := len(n.items) - 1; i >= 0; i-- {
		if n.items[i].RecipientID == recipientID {
			mine = append(mine, n.items[i])
		}
	}
	total := int64(len(mine))
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (n *Notifications) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var count int64
	for _, item := range n.items {
		if item.RecipientID == recipientID && !item.IsRead {
			count++
		}
	}
	return count, nil
}

func (n *Notifications) MarkAsRead(_ context.Context, id uint, recipientID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id && n.items[i].RecipientID == recipientID {
			n.items[i].IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification")
}

func (n *Notifications) MarkAllAsRead(_ context.Context, recipientID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].RecipientID == recipientID {
			n.items[i].IsRead = true
		}
	}
	return nil
}

// Users is an in-memory UserRepository.
type Users struct {
	mu    sync.Mutex
	users []models.User
}

var _ repositories.UserRepository = (*Users)(nil)

func (u *Users) CreateUser(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email || existing.UID == user.UID {
			return errors.Wrap(apperrors.ErrConflict, "an account with this email already exists")
		}
	}
	user.ID = uint(len(u.users) + 1)
	user.CreatedAt = time.Now().UTC()
	u.users = append(u.users, *user)
	return nil
}

func (u *Users) find(match func(models.User) bool) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (u *Users) GetUserByUID(_ context.Context, uid string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.UID == uid })
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Email == email })
}

func (u *Users) GetUsersByUIDs(_ context.Context, uids []string) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	want := make(map[string]bool, len(uids))
	for _, uid := range uids {
		want[uid] = true
	}
	var out []models.User
	for _, user := range u.users {
		if want[user.UID] {
			out = append(out, user)
		}
	}
	return out, nil
}

func (u *Users) UpdateUser(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.users {
		if u.users[i].UID == user.UID {
			u.users[i] = *user
			return nil
		}
	}
	return apperrors.NotFound("user")
}

// Applications is an in-memory AdminApplicationRepository.
type Applications struct {
	mu   sync.Mutex
	apps []models.AdminApplication
}

var _ repositories.AdminApplicationRepository = (*Applications)(nil)

func (a *Applications) CreateApplication(_ context.Context, app *models.AdminApplication) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.apps {
		if existing.UserID == app.UserID {
			return errors.Wrap(apperrors.ErrConflict, "an application for this account already exists")
		}
	}
	app.ID = uint(len(a.apps) + 1)
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	if app.Role == "" {
		app.Role = models.RoleAdmin
	}
	app.CreatedAt = time.Now().UTC().Add(time.Duration(app.ID) * time.Millisecond)
	a.apps = append(a.apps, *app)
	return nil
}

func (a *Applications) GetApplication(_ context.Context, id uint) (*models.AdminApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, app := range a.apps {
		if app.ID == id {
			found := app
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("application")
}

func (a *Applications) GetApplicationByUserID(_ context.Context, userID string) (*models.AdminApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, app := range a.apps {
		if app.UserID == userID {
			found := app
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("application")
}

func (a *Applications) ListApplications(_ context.Context, status models.ApplicationStatus) ([]models.AdminApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.AdminApplication
	for _, app := range a.apps {
		if status == "" || app.Status == status {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (a *Applications) CountByStatus(_ context.Context, status models.ApplicationStatus) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var n int64
	for _, app := range a.apps {
		if app.Status == status {
			n++
		}
	}
	return n, nil
}

func (a *Applications) Decide(_ context.Context, id uint, status models.ApplicationStatus) (*models.AdminApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.apps {
		if a.apps[i].ID != id {
			continue
		}
		if a.apps[i].Status != models.ApplicationPending {
			return nil, errors.Wrapf(apperrors.ErrConflict, "application already %s", a.apps[i].Status)
		}
		now := time.Now().UTC()
		a.apps[i].Status = status
		a.apps[i].DecidedAt = &now
		found := a.apps[i]
		return &found, nil
	}
	return nil, apperrors.NotFound("application")
}

// SavedIssues is an in-memory SavedIssueRepository.
type SavedIssues struct {
	mu    sync.Mutex
	saved []models.SavedIssue
}

var _ repositories.SavedIssueRepository = (*SavedIssues)(nil)

func (s *SavedIssues) SaveIssue(_ context.Context, saved *models.SavedIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.saved {
		if existing.UserID == saved.UserID && existing.IssueID == saved.IssueID {
			return errors.Wrap(apperrors.ErrConflict, "issue already saved")
		}
	}
	saved.ID = uint(len(s.saved) + 1)
	saved.CreatedAt = time.Now().UTC()
	s.saved = append(s.saved, *saved)
	return nil
}

func (s *SavedIssues) UnsaveIssue(_ context.Context, userID, issueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.saved {
		if existing.UserID == userID && existing.IssueID == issueID {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("saved issue")
}

func (s *SavedIssues) IsIssueSaved(_ context.Context, userID, issueID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.saved {
		if existing.UserID == userID && existing.IssueID == issueID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SavedIssues) GetSavedIssuesByUser(_ context.Context, userID string) ([]models.SavedIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SavedIssue
	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].UserID == userID {
			out = append(out, s.saved[i])
		}
	}
	return out, nil
}
