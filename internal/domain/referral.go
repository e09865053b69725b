package domain

import (
	"time"

	"github.com/google/uuid"
)

// PendingBonuses is the per-referrer accrued-but-unclaimed commission
// bucket. Both fields only grow until a claim zeroes them.
type PendingBonuses struct {
	UserID      uuid.UUID  `json:"user_id"`
	Mining      int64      `json:"mining"`
	Trading     int64      `json:"trading"`
	LastClaimed *time.Time `json:"last_claimed,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Total returns the claimable sum of both buckets.
func (p *PendingBonuses) Total() int64 {
	return p.Mining + p.Trading
}

// Referral records a bound referrer/referred relationship
type Referral struct {
	ID         uuid.UUID `json:"id"`
	ReferrerID uuid.UUID `json:"referrer_id"`
	ReferredID uuid.UUID `json:"referred_id"`
	Amount     int64     `json:"amount"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReferralClaimEntry is the history record written when pending bonuses
// are moved to the balance, with the per-kind breakdown at claim time.
type ReferralClaimEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	Mining    int64     `json:"mining"`
	Trading   int64     `json:"trading"`
	CreatedAt time.Time `json:"created_at"`
}

// ReferralStats is the aggregate view served to the referrals page.
type ReferralStats struct {
	Code           string         `json:"code"`
	TotalReferrals int            `json:"total_referrals"`
	TotalEarnings  int64          `json:"total_earnings"`
	Pending        PendingBonuses `json:"pending"`
	History        []*Referral    `json:"history"`
}
