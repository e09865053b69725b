package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
)

const taskColumns = `
	id, title, description, type, reward, icon, COALESCE(link, ''), COALESCE(link_type, ''),
	status, start_time, end_time, condition_type, condition_target, created_at, updated_at
`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *infra.Database
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *infra.Database) domain.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	task := &domain.Task{}
	var condType *string
	var condTarget *int
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Type, &task.Reward,
		&task.Icon, &task.Link, &task.LinkType, &task.Status,
		&task.StartTime, &task.EndTime, &condType, &condTarget,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	if condType != nil && condTarget != nil {
		task.Condition = &domain.TaskCondition{Type: *condType, Target: *condTarget}
	}
	return task, nil
}

func taskConditionFields(task *domain.Task) (*string, *int) {
	if task.Condition == nil {
		return nil, nil
	}
	return &task.Condition.Type, &task.Condition.Target
}

// Create persists a new task definition
func (r *TaskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	condType, condTarget := taskConditionFields(task)
	_, err := r.db.Exec(ctx, `
		INSERT INTO tasks (
			id, title, description, type, reward, icon, link, link_type,
			status, start_time, end_time, condition_type, condition_target, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $14)
	`,
		task.ID, task.Title, task.Description, task.Type, task.Reward, task.Icon,
		task.Link, task.LinkType, task.Status, task.StartTime, task.EndTime,
		condType, condTarget, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update rewrites a task definition
func (r *TaskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	condType, condTarget := taskConditionFields(task)
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, type = $3, reward = $4, icon = $5,
		    link = NULLIF($6, ''), link_type = NULLIF($7, ''), status = $8,
		    start_time = $9, end_time = $10, condition_type = $11, condition_target = $12,
		    updated_at = NOW()
		WHERE id = $13
	`,
		task.Title, task.Description, task.Type, task.Reward, task.Icon,
		task.Link, task.LinkType, task.Status, task.StartTime, task.EndTime,
		condType, condTarget, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task definition and cascades its user instances
func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT`+taskColumns+`FROM tasks WHERE id = $1`, id))
}

// ListDefinitions lists all task definitions
func (r *TaskRepositoryImpl) ListDefinitions(ctx context.Context) ([]*domain.Task, error) {
	return r.listTasks(ctx, `SELECT`+taskColumns+`FROM tasks ORDER BY created_at DESC`)
}

// ListAvailable lists definitions with status available
func (r *TaskRepositoryImpl) ListAvailable(ctx context.Context) ([]*domain.Task, error) {
	return r.listTasks(ctx, `SELECT`+taskColumns+`FROM tasks WHERE status = 'available' ORDER BY created_at DESC`)
}

func (r *TaskRepositoryImpl) listTasks(ctx context.Context, query string) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// GetUserTask retrieves a user's instance of a task, nil when none
func (r *TaskRepositoryImpl) GetUserTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.UserTask, error) {
	ut := &domain.UserTask{}
	err := r.db.QueryRow(ctx, `
		SELECT task_id, user_id, status, started_at, claimed_at
		FROM user_tasks WHERE user_id = $1 AND task_id = $2
	`, userID, taskID).Scan(&ut.TaskID, &ut.UserID, &ut.Status, &ut.StartedAt, &ut.ClaimedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user task: %w", err)
	}
	return ut, nil
}

// ListUserTasks lists all of a user's task instances
func (r *TaskRepositoryImpl) ListUserTasks(ctx context.Context, userID uuid.UUID) ([]*domain.UserTask, error) {
	rows, err := r.db.Query(ctx, `
		SELECT task_id, user_id, status, started_at, claimed_at
		FROM user_tasks WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.UserTask
	for rows.Next() {
		ut := &domain.UserTask{}
		if err := rows.Scan(&ut.TaskID, &ut.UserID, &ut.Status, &ut.StartedAt, &ut.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user task: %w", err)
		}
		tasks = append(tasks, ut)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user tasks: %w", err)
	}
	return tasks, nil
}

// UpsertUserTask creates or replaces a user's task instance
func (r *TaskRepositoryImpl) UpsertUserTask(ctx context.Context, ut *domain.UserTask) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_tasks (task_id, user_id, status, started_at, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id, user_id) DO UPDATE
		SET status = EXCLUDED.status, claimed_at = EXCLUDED.claimed_at
	`, ut.TaskID, ut.UserID, ut.Status, ut.StartedAt, ut.ClaimedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user task: %w", err)
	}
	return nil
}

// ClaimReward atomically marks a completed user task claimed and
// credits the reward. The status guard makes repeat claims no-ops that
// reject instead of double-paying.
func (r *TaskRepositoryImpl) ClaimReward(ctx context.Context, userID, taskID uuid.UUID, reward int64, now time.Time) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `
			SELECT status FROM user_tasks WHERE user_id = $1 AND task_id = $2
		`, userID, taskID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return fmt.Errorf("failed to read user task: %w", err)
		}
		if status != domain.TaskCompleted {
			return domain.ErrTaskNotCompleted
		}

		_, err = tx.Exec(ctx, `
			UPDATE user_tasks SET status = 'claimed', claimed_at = $1
			WHERE user_id = $2 AND task_id = $3
		`, now, userID, taskID)
		if err != nil {
			return fmt.Errorf("failed to mark task claimed: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET points = points + $1, updated_at = NOW() WHERE id = $2
		`, reward, userID)
		if err != nil {
			return fmt.Errorf("failed to credit task reward: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard SET points = points + $1, updated_at = NOW() WHERE user_id = $2
		`, reward, userID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}
		return nil
	})
}
