package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"cryptohustle/internal/middleware"
	"cryptohustle/internal/service"
)

// MiningHandler handles mining cycle endpoints
type MiningHandler struct {
	mining *service.MiningService
}

// NewMiningHandler creates a new MiningHandler
func NewMiningHandler(mining *service.MiningService) *MiningHandler {
	return &MiningHandler{mining: mining}
}

// GetStatus returns the caller's mining state
// GET /api/mining
func (h *MiningHandler) GetStatus(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mining, err := h.mining.Status(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load mining status", err)
	}
	return SuccessResponse(c, mining)
}

// Start begins a new mining cycle
// POST /api/mining/start
func (h *MiningHandler) Start(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.mining.Start(ctx, userID); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Mining started", nil)
}

// Claim closes an elapsed cycle and pays the reward
// POST /api/mining/claim
func (h *MiningHandler) Claim(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	claim, err := h.mining.Claim(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, claim)
}

// Upgrade buys the next power level
// POST /api/mining/upgrade
func (h *MiningHandler) Upgrade(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mining, err := h.mining.Upgrade(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, mining)
}

// GetHistory lists the caller's recent claims
// GET /api/mining/history
func (h *MiningHandler) GetHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	history, err := h.mining.History(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load mining history", err)
	}
	return SuccessResponse(c, history)
}
