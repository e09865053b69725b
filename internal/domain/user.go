package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a player in the system
type User struct {
	ID                    uuid.UUID  `json:"id"`
	TelegramID            int64      `json:"telegram_id"`
	DisplayName           string     `json:"display_name"`
	Username              string     `json:"username,omitempty"`
	Role                  string     `json:"role"`
	PasswordHash          string     `json:"-"` // Never expose password hash in JSON
	Points                int64      `json:"points"`
	Wins                  int        `json:"wins"`
	Losses                int        `json:"losses"`
	TotalTrades           int        `json:"total_trades"`
	WinRate               float64    `json:"win_rate"`
	DailyStreak           int        `json:"daily_streak"`
	TotalReferrals        int        `json:"total_referrals"`
	TotalReferralEarnings int64      `json:"total_referral_earnings"`
	ReferralCode          *string    `json:"referral_code,omitempty"`
	ReferrerID            *uuid.UUID `json:"referrer_id,omitempty"`
	LastLoginDate         time.Time  `json:"last_login_date"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// UserRole constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// StartingPoints is the balance granted on first sign-in.
const StartingPoints int64 = 2000

// UserAggregates is the snapshot of counters that task conditions are
// evaluated against.
type UserAggregates struct {
	MiningStreak     int
	DailyMiningCount int
	TotalReferrals   int
	TotalTrades      int
}
