package http

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/middleware"
	"cryptohustle/internal/service"
)

// LeaderboardHandler handles ranking endpoints
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Top returns the ranked entries for a scope
// GET /api/leaderboard?scope=all-time&limit=100
func (h *LeaderboardHandler) Top(c echo.Context) error {
	scope := c.QueryParam("scope")
	if scope == "" {
		scope = domain.ScopeAllTime
	}
	if !domain.ValidScope(scope) {
		return BadRequestResponse(c, "Unknown leaderboard scope")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.leaderboard.Top(ctx, scope, limit)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load leaderboard", err)
	}
	return SuccessResponse(c, entries)
}

// Me returns the caller's own ranking row
// GET /api/leaderboard/me?scope=season
func (h *LeaderboardHandler) Me(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	scope := c.QueryParam("scope")
	if scope == "" {
		scope = domain.ScopeAllTime
	}
	if !domain.ValidScope(scope) {
		return BadRequestResponse(c, "Unknown leaderboard scope")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.leaderboard.Entry(ctx, scope, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, entry)
}
