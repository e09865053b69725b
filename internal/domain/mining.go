package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mining holds the per-user mining cycle state
type Mining struct {
	UserID           uuid.UUID  `json:"user_id"`
	MiningStartTime  *time.Time `json:"mining_start_time,omitempty"`
	MiningLevel      int        `json:"mining_level"`
	MiningPower      int64      `json:"mining_power"`
	MiningStreak     int        `json:"mining_streak"`
	TotalMined       int64      `json:"total_mined"`
	LastClaimTime    *time.Time `json:"last_claim_time,omitempty"`
	DailyMiningCount int        `json:"daily_mining_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CycleElapsed reports whether a started cycle has run its full
// duration at the given time.
func (m *Mining) CycleElapsed(now time.Time) bool {
	if m.MiningStartTime == nil {
		return false
	}
	return now.Sub(*m.MiningStartTime) >= MiningDuration
}

// MiningHistoryEntry is the record appended on each successful claim.
type MiningHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Reward    int64     `json:"reward"`
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"created_at"`
}

// MiningClaim is the outcome of a successful claim returned to the UI.
type MiningClaim struct {
	Reward         int64 `json:"reward"`
	Streak         int   `json:"streak"`
	MilestoneBonus int64 `json:"milestone_bonus,omitempty"`
	TotalMined     int64 `json:"total_mined"`
}
