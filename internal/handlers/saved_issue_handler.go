package handlers

import (
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedIssueHandler handles bookmarking issues
type SavedIssueHandler struct {
	savedRepository repositories.SavedIssueRepository
	reports         *services.Reports
}

// NewSavedIssueHandler creates a new SavedIssueHandler
func NewSavedIssueHandler(savedRepo repositories.SavedIssueRepository, reports *services.Reports) *SavedIssueHandler {
	return &SavedIssueHandler{savedRepository: savedRepo, reports: reports}
}

// RegisterSavedIssueRoutes registers saved issue routes
func (h *SavedIssueHandler) RegisterSavedIssueRoutes(g *echo.Group) {
	g.POST("/me/saved/:id", h.SaveIssue)
	g.DELETE("/me/saved/:id", h.UnsaveIssue)
	g.GET("/me/saved", h.GetSavedIssues)
}

// SaveIssue bookmarks an existing issue for the caller
func (h *SavedIssueHandler) SaveIssue(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	issue, err := h.reports.Get(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	saved := &models.SavedIssue{UserID: session.UserID, IssueID: issue.ID, Title: issue.Title}
	if len(issue.ImageURLs) > 0 {
		saved.ImageURL = issue.ImageURLs[0]
	}
	if err := h.savedRepository.SaveIssue(ctx, saved); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"saved": saved})
}

func (h *SavedIssueHandler) UnsaveIssue(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := h.savedRepository.UnsaveIssue(c.Request().Context(), session.UserID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"success": true})
}

// GetSavedIssues lists the caller's bookmarks, newest first
func (h *SavedIssueHandler) GetSavedIssues(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	saved, err := h.savedRepository.GetSavedIssuesByUser(c.Request().Context(), session.UserID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"saved": saved})
}
