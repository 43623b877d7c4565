package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin dashboard: status updates, stats and the
// admin application workflow.
type AdminHandler struct {
	workflow  *services.StatusWorkflow
	approvals *services.Approvals
	dashboard *services.Dashboard
	votes     *VoteHandler
}

func NewAdminHandler(workflow *services.StatusWorkflow, approvals *services.Approvals, dashboard *services.Dashboard, votes *VoteHandler) *AdminHandler {
	return &AdminHandler{workflow: workflow, approvals: approvals, dashboard: dashboard, votes: votes}
}

// RegisterAdminRoutes registers admin routes. adminOnly and superAdminOnly run
// after the session middleware already applied to g.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group, adminOnly, superAdminOnly echo.MiddlewareFunc) {
	g.POST("/admin/applications", h.ApplyForAdmin)

	g.PUT("/admin/issues/:id/status", h.UpdateStatus, adminOnly)
	g.GET("/admin/issues/:id/votes/audit", h.votes.AuditVotes, adminOnly)
	g.GET("/admin/stats", h.GetStats, adminOnly)

	g.GET("/admin/applications", h.ListApplications, superAdminOnly)
	g.PUT("/admin/applications/:id/decision", h.DecideApplication, superAdminOnly)
}

// UpdateStatus sets an issue's status. Any status may follow any other.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req models.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.workflow.SetStatus(c.Request().Context(), session, c.Param("id"), models.IssueStatus(req.Status))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"issue": issue})
}

// GetStats takes optional state and district query parameters; only super
// admins may look outside their own district.
func (h *AdminHandler) GetStats(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var location models.LocationFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &location); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location filter")
	}

	stats, err := h.dashboard.Stats(c.Request().Context(), session, location)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"stats": stats, "scope": session.Scope(location)})
}

func (h *AdminHandler) ApplyForAdmin(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req models.AdminApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.approvals.Apply(c.Request().Context(), session, req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"application": app})
}

func (h *AdminHandler) ListApplications(c echo.Context) error {
	apps, err := h.approvals.List(c.Request().Context(), models.ApplicationStatus(c.QueryParam("status")))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"applications": apps})
}

func (h *AdminHandler) DecideApplication(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid application ID")
	}
	var req models.DecisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.approvals.Decide(c.Request().Context(), uint(id), *req.Approve)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"application": app})
}
