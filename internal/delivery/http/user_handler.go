package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/middleware"
)

const notificationLimit = 50

// UserHandler handles profile endpoints
type UserHandler struct {
	userRepo  domain.UserRepository
	notifRepo domain.NotificationRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo domain.UserRepository, notifRepo domain.NotificationRepository) *UserHandler {
	return &UserHandler{
		userRepo:  userRepo,
		notifRepo: notifRepo,
	}
}

// GetMe returns the caller's profile
// GET /api/user/me
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, user)
}

// GetNotifications lists the caller's inbox, newest first
// GET /api/user/notifications
func (h *UserHandler) GetNotifications(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notifications, err := h.notifRepo.ListByUser(ctx, userID, notificationLimit)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load notifications", err)
	}
	return SuccessResponse(c, notifications)
}
