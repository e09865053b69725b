package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a timed directional bet on a symbol's price
type Order struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Symbol         string     `json:"symbol"`
	Direction      string     `json:"direction"`
	Timeframe      Timeframe  `json:"timeframe"`
	Amount         int64      `json:"amount"`
	EntryPrice     float64    `json:"entry_price"`
	FixedExitPrice *float64   `json:"fixed_exit_price,omitempty"`
	Status         string     `json:"status"`
	Result         *string    `json:"result,omitempty"`
	Profit         *int64     `json:"profit,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	EndTime        time.Time  `json:"end_time"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// OrderDirection constants
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// OrderStatus constants. The only transitions are
// active -> ready_to_claim (price fix) -> completed (claim).
const (
	OrderActive       = "active"
	OrderReadyToClaim = "ready_to_claim"
	OrderCompleted    = "completed"
)

// OrderResult constants
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// ValidDirection reports whether s is a known order direction.
func ValidDirection(s string) bool {
	return s == DirectionBuy || s == DirectionSell
}

// Timeframe is one of the fixed set of bet durations.
type Timeframe string

const (
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// TimeframeConfig holds the duration and minimum stake for a timeframe.
type TimeframeConfig struct {
	Label     string
	Duration  time.Duration
	MinAmount int64
}

// Timeframes is the fixed set of bet durations.
var Timeframes = map[Timeframe]TimeframeConfig{
	Timeframe15m: {Label: "15 Min", Duration: 15 * time.Minute, MinAmount: 50},
	Timeframe1h:  {Label: "1 Hour", Duration: time.Hour, MinAmount: 50},
	Timeframe4h:  {Label: "4 Hours", Duration: 4 * time.Hour, MinAmount: 50},
	Timeframe1d:  {Label: "1 Day", Duration: 24 * time.Hour, MinAmount: 50},
}

// Valid reports whether t is a known timeframe.
func (t Timeframe) Valid() bool {
	_, ok := Timeframes[t]
	return ok
}

// OrderHistoryEntry is the immutable record appended at settlement.
type OrderHistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Symbol      string    `json:"symbol"`
	Direction   string    `json:"direction"`
	Amount      int64     `json:"amount"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	Result      string    `json:"result"`
	Profit      int64     `json:"profit"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}
