package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"cryptohustle/internal/middleware"
	"cryptohustle/internal/service"
)

// ReferralHandler handles referral endpoints
type ReferralHandler struct {
	referrals *service.ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referrals *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// GetStats returns the referrals page view: code, totals, pending
// buckets and history
// GET /api/referrals
func (h *ReferralHandler) GetStats(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.referrals.Stats(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load referral stats", err)
	}
	return SuccessResponse(c, stats)
}

// Bind applies a referral code to the caller
// POST /api/referrals/bind
func (h *ReferralHandler) Bind(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Code == "" {
		return BadRequestResponse(c, "code is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	referral, err := h.referrals.Bind(ctx, userID, req.Code)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, referral)
}

// Claim moves all pending commission into the balance
// POST /api/referrals/claim
func (h *ReferralHandler) Claim(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.referrals.Claim(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, entry)
}
