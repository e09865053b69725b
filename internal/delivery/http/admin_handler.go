package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptohustle/internal/delivery/http/dto"
	"cryptohustle/internal/domain"
	"cryptohustle/internal/service"
)

// AdminHandler handles the admin console endpoints
type AdminHandler struct {
	tasks       *service.TaskService
	leaderboard *service.LeaderboardService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(tasks *service.TaskService, leaderboard *service.LeaderboardService) *AdminHandler {
	return &AdminHandler{
		tasks:       tasks,
		leaderboard: leaderboard,
	}
}

func taskFromRequest(req *dto.TaskRequest) *domain.Task {
	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Reward:      req.Reward,
		Icon:        req.Icon,
		Link:        req.Link,
		LinkType:    req.LinkType,
		Status:      req.Status,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.ConditionType != "" {
		task.Condition = &domain.TaskCondition{
			Type:   req.ConditionType,
			Target: req.ConditionTarget,
		}
	}
	return task
}

// ListTasks lists every task definition
// GET /api/admin/tasks
func (h *AdminHandler) ListTasks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.tasks.ListDefinitions(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load tasks", err)
	}
	return SuccessResponse(c, tasks)
}

// CreateTask creates a task definition
// POST /api/admin/tasks
func (h *AdminHandler) CreateTask(c echo.Context) error {
	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Title == "" || req.Type == "" || req.Reward <= 0 {
		return BadRequestResponse(c, "title, type and a positive reward are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	task := taskFromRequest(&req)
	if err := h.tasks.CreateDefinition(ctx, task); err != nil {
		return InternalServerErrorResponse(c, "Failed to create task", err)
	}
	return CreatedResponse(c, task)
}

// UpdateTask rewrites a task definition
// PUT /api/admin/tasks/:id
func (h *AdminHandler) UpdateTask(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid task ID")
	}

	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	task := taskFromRequest(&req)
	task.ID = taskID
	if err := h.tasks.UpdateDefinition(ctx, task); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, task)
}

// DeleteTask removes a task definition and its user instances
// DELETE /api/admin/tasks/:id
func (h *AdminHandler) DeleteTask(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid task ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.tasks.DeleteDefinition(ctx, taskID); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Task deleted", nil)
}

// EndSeason pays season rewards and opens a fresh season
// POST /api/admin/season/end
func (h *AdminHandler) EndSeason(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.leaderboard.EndSeason(ctx); err != nil {
		return InternalServerErrorResponse(c, "Failed to end season", err)
	}
	return SuccessMessageResponse(c, "Season ended", nil)
}

// ResetSeason voids the running season: zeroes every season row without
// paying rewards
// POST /api/admin/season/reset
func (h *AdminHandler) ResetSeason(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.leaderboard.ResetSeason(ctx); err != nil {
		return InternalServerErrorResponse(c, "Failed to reset season", err)
	}
	return SuccessMessageResponse(c, "Season reset", nil)
}

// RefreshRanks rewrites the leaderboard rank columns on demand
// POST /api/admin/leaderboard/refresh
func (h *AdminHandler) RefreshRanks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.leaderboard.RefreshRanks(ctx); err != nil {
		return InternalServerErrorResponse(c, "Failed to refresh ranks", err)
	}
	return SuccessMessageResponse(c, "Ranks refreshed", nil)
}
