package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskType constants
const (
	TaskLimited = "limited"
	TaskInGame  = "ingame"
	TaskPartner = "partner"
)

// TaskStatus constants
const (
	TaskAvailable = "available"
	TaskActive    = "active"
	TaskCompleted = "completed"
	TaskClaimed   = "claimed"
)

// ConditionType constants for in-game tasks
const (
	ConditionMiningStreak = "mining_streak"
	ConditionMiningDaily  = "mining_daily"
	ConditionReferrals    = "referrals"
	ConditionTrades       = "trades"
)

// TaskCondition describes when an in-game task counts as completed.
type TaskCondition struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
}

// Met evaluates the condition against a snapshot of user aggregates.
// Pure so it can be tested without the store.
func (c *TaskCondition) Met(agg UserAggregates) bool {
	if c == nil {
		return false
	}
	switch c.Type {
	case ConditionMiningStreak:
		return agg.MiningStreak >= c.Target
	case ConditionMiningDaily:
		return agg.DailyMiningCount >= c.Target
	case ConditionReferrals:
		return agg.TotalReferrals >= c.Target
	case ConditionTrades:
		return agg.TotalTrades >= c.Target
	default:
		return false
	}
}

// Task is an admin-authored task definition
type Task struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Reward      int64          `json:"reward"`
	Icon        string         `json:"icon"`
	Link        string         `json:"link,omitempty"`
	LinkType    string         `json:"link_type,omitempty"`
	Status      string         `json:"status"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Condition   *TaskCondition `json:"condition,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Expired reports whether a time-boxed task's window has passed.
func (t *Task) Expired(now time.Time) bool {
	return t.EndTime != nil && now.After(*t.EndTime)
}

// UserTask is a per-user task instance
type UserTask struct {
	TaskID    uuid.UUID  `json:"task_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}
