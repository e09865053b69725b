package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification type constants
const (
	NotifyReferralBonus = "referral_bonus"
	NotifyNewReferral   = "new_referral"
)

// Notification is a fire-and-forget inbox event. Delivery failures are
// never fatal to the operation that produced them.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Amount    int64      `json:"amount"`
	BonusType string     `json:"bonus_type,omitempty"`
	FromUser  *uuid.UUID `json:"from_user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PriceData is a point-in-time quote for a symbol.
type PriceData struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}
