package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const defaultLeaderboardSize = 10

type LeaderboardHandler struct {
	dashboard *services.Dashboard
}

func NewLeaderboardHandler(dashboard *services.Dashboard) *LeaderboardHandler {
	return &LeaderboardHandler{dashboard: dashboard}
}

func (h *LeaderboardHandler) RegisterLeaderboardRoutes(g *echo.Group) {
	g.GET("/leaderboard", h.GetLeaderboard)
}

// GetLeaderboard ranks reporters by the number of issues they filed under their profile.
func (h *LeaderboardHandler) GetLeaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultLeaderboardSize
	}

	entries, err := h.dashboard.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"leaderboard": entries})
}
