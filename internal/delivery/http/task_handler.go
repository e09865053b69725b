package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptohustle/internal/delivery/http/dto"
	"cryptohustle/internal/middleware"
	"cryptohustle/internal/service"
)

// TaskHandler handles player-facing task endpoints
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List returns the available tasks with the caller's status on each
// GET /api/tasks
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.tasks.ListForUser(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load tasks", err)
	}
	return SuccessResponse(c, views)
}

// Start marks a task active for the caller
// POST /api/tasks/:id/start
func (h *TaskHandler) Start(c echo.Context) error {
	userID, taskID, errResp := taskRequest(c)
	if errResp != nil {
		return errResp(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.tasks.Start(ctx, userID, taskID); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Task started", nil)
}

// Complete marks an active link task as completed
// POST /api/tasks/:id/complete
func (h *TaskHandler) Complete(c echo.Context) error {
	userID, taskID, errResp := taskRequest(c)
	if errResp != nil {
		return errResp(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.tasks.Complete(ctx, userID, taskID); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Task completed", nil)
}

// Claim pays a completed task's reward
// POST /api/tasks/:id/claim
func (h *TaskHandler) Claim(c echo.Context) error {
	userID, taskID, errResp := taskRequest(c)
	if errResp != nil {
		return errResp(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reward, err := h.tasks.Claim(ctx, userID, taskID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.ClaimOutput{Reward: reward})
}

func taskRequest(c echo.Context) (uuid.UUID, uuid.UUID, func(echo.Context) error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, func(c echo.Context) error {
			return UnauthorizedResponse(c, "Not authenticated")
		}
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, func(c echo.Context) error {
			return BadRequestResponse(c, "Invalid task ID")
		}
	}
	return userID, taskID, nil
}
