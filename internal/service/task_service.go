package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

// TaskView is a task definition merged with the caller's progress.
type TaskView struct {
	*domain.Task
	UserStatus string     `json:"user_status"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
}

// TaskService merges task definitions with per-user progress. In-game
// task completion is evaluated lazily on read against the user's
// counters, so there is no progress tracker to keep in sync.
type TaskService struct {
	taskRepo domain.TaskRepository
	userRepo domain.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo domain.TaskRepository, userRepo domain.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ListForUser returns the available tasks with the caller's status on
// each. Expired time-boxed tasks are dropped; in-game tasks whose
// condition the user already meets surface as completed.
func (s *TaskService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*TaskView, error) {
	tasks, err := s.taskRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	userTasks, err := s.taskRepo.ListUserTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uuid.UUID]*domain.UserTask, len(userTasks))
	for _, ut := range userTasks {
		byTask[ut.TaskID] = ut
	}

	agg, err := s.userRepo.GetAggregates(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		if task.Expired(now) {
			continue
		}
		if task.StartTime != nil && now.Before(*task.StartTime) {
			continue
		}

		view := &TaskView{Task: task, UserStatus: domain.TaskAvailable}
		if ut, ok := byTask[task.ID]; ok {
			view.UserStatus = ut.Status
			view.ClaimedAt = ut.ClaimedAt
		}
		if view.UserStatus != domain.TaskClaimed && task.Condition.Met(agg) {
			view.UserStatus = domain.TaskCompleted
		}
		views = append(views, view)
	}
	return views, nil
}

// Start marks a task active for the user. Link tasks stay active until
// Complete; in-game tasks flip to completed as soon as the condition is
// met.
func (s *TaskService) Start(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	now := time.Now()
	if task.Status != domain.TaskAvailable || task.Expired(now) {
		return domain.ErrTaskNotAvailable
	}

	if existing, err := s.taskRepo.GetUserTask(ctx, userID, taskID); err != nil {
		return err
	} else if existing != nil {
		return nil // already started, idempotent
	}

	return s.taskRepo.UpsertUserTask(ctx, &domain.UserTask{
		TaskID:    taskID,
		UserID:    userID,
		Status:    domain.TaskActive,
		StartedAt: now,
	})
}

// Complete marks an active link task as completed. In-game tasks ignore
// this; their completion comes from the condition check at claim time.
func (s *TaskService) Complete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Condition != nil {
		return nil
	}

	ut, err := s.taskRepo.GetUserTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if ut == nil || ut.Status != domain.TaskActive {
		return domain.ErrTaskNotAvailable
	}

	ut.Status = domain.TaskCompleted
	return s.taskRepo.UpsertUserTask(ctx, ut)
}

// Claim pays a completed task's reward. For in-game tasks the condition
// is re-checked here so claims cannot race ahead of real progress.
func (s *TaskService) Claim(ctx context.Context, userID, taskID uuid.UUID) (int64, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	if task.Expired(now) {
		return 0, domain.ErrTaskNotAvailable
	}

	if task.Condition != nil {
		agg, err := s.userRepo.GetAggregates(ctx, userID)
		if err != nil {
			return 0, err
		}
		if !task.Condition.Met(agg) {
			return 0, domain.ErrTaskNotCompleted
		}

		// Materialize the lazily-evaluated completion so the claim
		// transaction has a row to guard on.
		ut, err := s.taskRepo.GetUserTask(ctx, userID, taskID)
		if err != nil {
			return 0, err
		}
		if ut == nil || ut.Status == domain.TaskActive {
			started := now
			if ut != nil {
				started = ut.StartedAt
			}
			if err := s.taskRepo.UpsertUserTask(ctx, &domain.UserTask{
				TaskID:    taskID,
				UserID:    userID,
				Status:    domain.TaskCompleted,
				StartedAt: started,
			}); err != nil {
				return 0, err
			}
		}
	}

	if err := s.taskRepo.ClaimReward(ctx, userID, taskID, task.Reward, now); err != nil {
		return 0, err
	}

	logging.Logg.Info("task reward claimed",
		"user_id", userID, "task_id", taskID, "reward", task.Reward)
	return task.Reward, nil
}

// CreateDefinition persists an admin-authored task.
func (s *TaskService) CreateDefinition(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = domain.TaskAvailable
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	return s.taskRepo.Create(ctx, task)
}

// UpdateDefinition rewrites an admin-authored task.
func (s *TaskService) UpdateDefinition(ctx context.Context, task *domain.Task) error {
	return s.taskRepo.Update(ctx, task)
}

// DeleteDefinition removes a task and its user instances.
func (s *TaskService) DeleteDefinition(ctx context.Context, id uuid.UUID) error {
	return s.taskRepo.Delete(ctx, id)
}

// ListDefinitions lists every task for the admin console.
func (s *TaskService) ListDefinitions(ctx context.Context) ([]*domain.Task, error) {
	return s.taskRepo.ListDefinitions(ctx)
}
