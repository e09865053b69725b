package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user together with its leaderboard rows
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByTelegramID retrieves a user by Telegram ID
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)

	// GetByUsername retrieves a user by username (admin console login)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// EnsureReferralCode lazily assigns the given referral code when the
	// user has none yet and returns the effective code
	EnsureReferralCode(ctx context.Context, userID uuid.UUID, code string) (string, error)

	// RecordLogin advances the daily streak and credits the login bonus
	RecordLogin(ctx context.Context, userID uuid.UUID, streak int, bonus int64, now time.Time) error

	// GetAggregates returns the counters task conditions are checked against
	GetAggregates(ctx context.Context, userID uuid.UUID) (UserAggregates, error)
}

// OrderRepository defines the interface for order ledger operations
type OrderRepository interface {
	// Open validates preconditions and persists a new active order
	Open(ctx context.Context, order *Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetLiveByUser retrieves a user's active and ready_to_claim orders
	GetLiveByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// GetExpiredActive retrieves active orders whose timeframe has elapsed
	GetExpiredActive(ctx context.Context, now time.Time) ([]*Order, error)

	// FixExitPrice locks in the exit price exactly once; it reports
	// whether this call was the one that applied the fix
	FixExitPrice(ctx context.Context, orderID uuid.UUID, price float64) (bool, error)

	// Settle atomically resolves a ready_to_claim order, adjusting the
	// user's balance and stats and appending the history record
	Settle(ctx context.Context, orderID, userID uuid.UUID, now time.Time) (*Order, *SettlementOutcome, error)

	// HistoryByUser lists completed-order records, newest first
	HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*OrderHistoryEntry, error)
}

// MiningRepository defines the interface for mining cycle state
type MiningRepository interface {
	// GetOrInit retrieves the user's mining state, creating it lazily
	GetOrInit(ctx context.Context, userID uuid.UUID) (*Mining, error)

	// Start begins a new cycle; rejected while one is in progress
	Start(ctx context.Context, userID uuid.UUID, now time.Time) error

	// Claim atomically closes an elapsed cycle and pays the reward
	Claim(ctx context.Context, userID uuid.UUID, now time.Time) (*MiningClaim, error)

	// Upgrade buys the next power level with points
	Upgrade(ctx context.Context, userID uuid.UUID, now time.Time) (*Mining, error)

	// HistoryByUser lists claim records, newest first
	HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*MiningHistoryEntry, error)
}

// ReferralRepository defines the interface for the referral ledger
type ReferralRepository interface {
	// Bind binds a referral code to a user, paying the welcome bonus to
	// both sides; one-time only
	Bind(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*Referral, error)

	// GetReferrerID returns the user's bound referrer, nil when none
	GetReferrerID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)

	// AddPending increments a referrer's pending bucket for a kind
	AddPending(ctx context.Context, referrerID uuid.UUID, kind BonusKind, amount int64) error

	// GetPending retrieves the pending buckets, creating them lazily
	GetPending(ctx context.Context, userID uuid.UUID) (*PendingBonuses, error)

	// ClaimPending atomically moves both buckets into the balance
	ClaimPending(ctx context.Context, userID uuid.UUID, now time.Time) (*ReferralClaimEntry, error)

	// ListByReferrer lists referral relationship entries
	ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit int) ([]*Referral, error)
}

// TaskRepository defines the interface for task definitions and per-user
// task instances
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// ListDefinitions lists all task definitions
	ListDefinitions(ctx context.Context) ([]*Task, error)

	// ListAvailable lists definitions with status available
	ListAvailable(ctx context.Context) ([]*Task, error)

	// GetUserTask retrieves a user's instance of a task, nil when none
	GetUserTask(ctx context.Context, userID, taskID uuid.UUID) (*UserTask, error)

	// ListUserTasks lists all of a user's task instances
	ListUserTasks(ctx context.Context, userID uuid.UUID) ([]*UserTask, error)

	// UpsertUserTask creates or replaces a user's task instance
	UpsertUserTask(ctx context.Context, ut *UserTask) error

	// ClaimReward atomically marks a user task claimed and credits the
	// reward to the balance
	ClaimReward(ctx context.Context, userID, taskID uuid.UUID, reward int64, now time.Time) error
}

// LeaderboardRepository defines the read/maintenance interface for the
// denormalized ranking projection. Event-driven writes happen inside the
// order/mining/referral transactions.
type LeaderboardRepository interface {
	Top(ctx context.Context, scope string, limit int) ([]*LeaderboardEntry, error)
	GetEntry(ctx context.Context, scope string, userID uuid.UUID) (*LeaderboardEntry, error)

	// RecomputeRanks rewrites the rank column from current points
	RecomputeRanks(ctx context.Context) error

	// AwardSeasonRewards pays the rank-based season rewards and zeroes
	// all season rows in one transaction
	AwardSeasonRewards(ctx context.Context) error

	// ResetSeason zeroes all season rows
	ResetSeason(ctx context.Context) error
}

// NotificationRepository defines the interface for the user inbox
type NotificationRepository interface {
	Add(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
}
