package handlers

import (
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// VoteHandler exposes the vote ledger.
type VoteHandler struct {
	ledger *services.Ledger
}

func NewVoteHandler(ledger *services.Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

// RegisterVoteRoutes registers the voting routes; g must require a session.
func (h *VoteHandler) RegisterVoteRoutes(g *echo.Group) {
	g.POST("/issues/:id/vote", h.CastVote)
	g.GET("/issues/:id/vote", h.GetMyVote)
}

// CastVote votes up or down. Repeating the same direction withdraws the vote.
func (h *VoteHandler) CastVote(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req models.CastVoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tally, err := h.ledger.CastVote(c.Request().Context(), session, c.Param("id"), models.VoteDirection(req.Direction))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, tally)
}

func (h *VoteHandler) GetMyVote(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	tally, err := h.ledger.MyVote(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, tally)
}

// AuditVotes is an admin route comparing an issue's count with its vote records.
func (h *VoteHandler) AuditVotes(c echo.Context) error {
	audit, err := h.ledger.Audit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, audit)
}
