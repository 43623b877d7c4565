package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/civic-connect/backend/internal/middleware"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var errNoImageHost = errors.New("no image host configured")

// IssueHandler handles issue reporting and browsing
type IssueHandler struct {
	reports   *services.Reports
	describer *services.Describer
	// submitLimit wraps the submit step so only validated reports use quota.
	submitLimit echo.MiddlewareFunc
}

// NewIssueHandler creates a new IssueHandler
func NewIssueHandler(reports *services.Reports, describer *services.Describer) *IssueHandler {
	return &IssueHandler{reports: reports, describer: describer}
}

// RegisterIssueRoutes registers issue routes. optionalAuth attaches a session
// when one is presented; limit caps report submissions that pass validation.
func (h *IssueHandler) RegisterIssueRoutes(g *echo.Group, optionalAuth, limit echo.MiddlewareFunc) {
	h.submitLimit = limit
	g.POST("/issues", h.CreateIssue, optionalAuth)
	g.GET("/issues", h.ListIssues)
	g.GET("/issues/:id", h.GetIssue)
	g.POST("/issues/describe", h.DescribeIssue)
}

// CreateIssue accepts a report as JSON or as a multipart form with "images".
func (h *IssueHandler) CreateIssue(c echo.Context) error {
	var req models.CreateIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	images, err := readImages(c, "images", maxIssueImages)
	if err != nil {
		return err
	}

	submit := func(c echo.Context) error {
		issue, err := h.reports.Submit(c.Request().Context(), middleware.SessionFrom(c), req, images)
		if err != nil {
			return httpError(err)
		}
		return ok(c, http.StatusCreated, echo.Map{"issue": issue})
	}
	if h.submitLimit != nil {
		return h.submitLimit(submit)(c)
	}
	return submit(c)
}

// ListIssues supports state, district, category, status, sort and limit filters.
func (h *IssueHandler) ListIssues(c echo.Context) error {
	filter := models.IssueFilter{
		State:    c.QueryParam("state"),
		District: c.QueryParam("district"),
		Category: c.QueryParam("category"),
		Status:   models.IssueStatus(c.QueryParam("status")),
		Sort:     c.QueryParam("sort"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 || limit > 200 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 200")
		}
		filter.Limit = limit
	}

	issues, err := h.reports.List(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"issues": issues, "count": len(issues)})
}

func (h *IssueHandler) GetIssue(c echo.Context) error {
	issue, err := h.reports.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"issue": issue})
}

// DescribeIssue drafts a description for the given category.
func (h *IssueHandler) DescribeIssue(c echo.Context) error {
	var req models.DescribeIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	text, err := h.describer.Describe(c.Request().Context(), req.Category)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"description": text})
}
