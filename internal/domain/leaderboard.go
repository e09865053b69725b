package domain

import (
	"time"

	"github.com/google/uuid"
)

// Leaderboard scope constants
const (
	ScopeAllTime = "all-time"
	ScopeSeason  = "season"
)

// LeaderboardEntry is the denormalized ranking row projected from user
// balance/stat fields. Written once per settlement/mining/referral
// event, read many times.
type LeaderboardEntry struct {
	Scope       string    `json:"scope"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"username,omitempty"`
	Points      int64     `json:"points"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	WinRate     float64   `json:"win_rate"`
	TotalTrades int       `json:"total_trades"`
	Rank        int       `json:"rank"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidScope reports whether s is a known leaderboard scope.
func ValidScope(s string) bool {
	return s == ScopeAllTime || s == ScopeSeason
}
