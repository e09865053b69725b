package domain

import (
	"math"
	"time"
)

// Economy constants. These are process-wide and never reconfigured at
// runtime; balancing changes ship as a new build.
const (
	MiningDuration      = 3 * time.Hour
	MiningDurationHours = 3
	BaseMiningRate      = 100 // PTS per hour at level 0
	MaxMiningLevel      = 30

	ReferralLimit        = 100
	ReferralWelcomeBonus = 1000

	MiningCommissionRate  = 0.10
	TradingCommissionRate = 0.05
)

// BonusKind discriminates the pending referral bonus buckets.
type BonusKind string

const (
	BonusMining  BonusKind = "mining"
	BonusTrading BonusKind = "trading"
)

// SettlementOutcome is the computed result of settling an order.
type SettlementOutcome struct {
	IsWin bool
	// PointsChange is the amount credited back: 2x the stake on a win
	// (stake returned plus equal profit), nothing on a loss.
	PointsChange int64
	// BalanceDelta is PointsChange minus the stake, i.e. net +stake on a
	// win and -stake on a loss. The stake is only deducted here because
	// it is never escrowed at order-open time.
	BalanceDelta int64
	Profit       int64
}

// Settle computes the outcome of an order given its fixed exit price.
// Equal entry and exit prices settle as a loss for both directions.
func Settle(direction string, entryPrice, exitPrice float64, amount int64) SettlementOutcome {
	priceDiff := exitPrice - entryPrice
	isWin := (direction == DirectionBuy && priceDiff > 0) ||
		(direction == DirectionSell && priceDiff < 0)

	var pointsChange, profit int64
	if isWin {
		pointsChange = amount * 2
		profit = amount
	} else {
		profit = -amount
	}

	return SettlementOutcome{
		IsWin:        isWin,
		PointsChange: pointsChange,
		BalanceDelta: pointsChange - amount,
		Profit:       profit,
	}
}

// SettledBalance applies a settlement delta to the current balance. A
// loss debits the stake, and the balance may have been spent on other
// orders or upgrades since the order opened, so the debit is
// re-validated against the balance as it stands at settlement time.
func SettledBalance(points int64, outcome SettlementOutcome) (int64, error) {
	next := points + outcome.BalanceDelta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}
	return next, nil
}

// WinRate returns the win percentage for the given counters.
func WinRate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// MiningPower returns the hourly mining rate for an upgrade level.
// Each level adds 10% of the base rate up to level 10, 20% up to level
// 20 and 30% beyond that.
func MiningPower(level int) int64 {
	if level < 0 {
		level = 0
	}
	if level > MaxMiningLevel {
		level = MaxMiningLevel
	}

	var bonus float64
	switch {
	case level <= 10:
		bonus = 0.1 * float64(level)
	case level <= 20:
		bonus = 0.2 * float64(level)
	default:
		bonus = 0.3 * float64(level)
	}
	return int64(math.Round(BaseMiningRate * (1 + bonus)))
}

// UpgradeCost returns the point cost of buying the next level.
func UpgradeCost(currentLevel int) int64 {
	next := int64(currentLevel + 1)
	return next * next * 1000
}

// MiningReward returns the payout for a completed cycle at the given
// power, scaled by the permanent streak multiplier.
func MiningReward(power int64, streak int) int64 {
	base := power * MiningDurationHours
	return int64(math.Round(float64(base) * StreakMultiplier(streak)))
}

// StreakMilestone is a rung of the mining streak ladder.
type StreakMilestone struct {
	Days       int
	Bonus      int64
	Multiplier float64
}

// MiningMilestones is the escalating streak ladder, ascending by days.
var MiningMilestones = []StreakMilestone{
	{Days: 7, Bonus: 500, Multiplier: 1.25},
	{Days: 30, Bonus: 2500, Multiplier: 1.5},
	{Days: 90, Bonus: 10000, Multiplier: 1.75},
	{Days: 180, Bonus: 25000, Multiplier: 2.0},
	{Days: 365, Bonus: 100000, Multiplier: 2.5},
}

// StreakMultiplier returns the permanent reward multiplier for the
// highest milestone the streak has reached. Pure and idempotent.
func StreakMultiplier(streak int) float64 {
	mult := 1.0
	for _, m := range MiningMilestones {
		if streak >= m.Days {
			mult = m.Multiplier
		}
	}
	return mult
}

// MilestoneBonus returns the sum of one-time bonuses unlocked by moving
// from prevStreak to newStreak. Recomputing with the same arguments
// always yields the same value.
func MilestoneBonus(prevStreak, newStreak int) int64 {
	var total int64
	for _, m := range MiningMilestones {
		if prevStreak < m.Days && newStreak >= m.Days {
			total += m.Bonus
		}
	}
	return total
}

// NextStreak advances a consecutive-day streak counter. The streak
// increments only when the last qualifying day was exactly the calendar
// day before now; a claim on the same day keeps it unchanged and any
// longer gap resets it to 1.
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	switch daysBetween(*last, now) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		if current < 1 {
			return 1
		}
		return current + 1
	default:
		return 1
	}
}

// SameDay reports whether two instants fall on the same UTC calendar
// day. All daily counters in the game roll over at UTC midnight.
func SameDay(a, b time.Time) bool {
	return daysBetween(a, b) == 0
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

// DailyLoginBonus returns the login bonus for a daily streak. The
// schedule caps at day 7.
func DailyLoginBonus(streak int) int64 {
	if streak > 7 {
		streak = 7
	}
	if streak <= 0 {
		return 0
	}
	if streak == 7 {
		return 1500
	}
	return int64(streak) * 100
}

// Commission returns the referral commission for an amount, floored to
// an integer. Rates are fixed per kind: mining 10%, trading 5%.
func Commission(amount int64, kind BonusKind) int64 {
	rate := TradingCommissionRate
	if kind == BonusMining {
		rate = MiningCommissionRate
	}
	return int64(math.Floor(float64(amount) * rate))
}

// SeasonReward returns the end-of-season payout for a leaderboard rank.
func SeasonReward(rank int) int64 {
	switch {
	case rank == 1:
		return 1000
	case rank == 2:
		return 800
	case rank == 3:
		return 600
	case rank <= 10 && rank > 0:
		return 400
	case rank <= 20 && rank > 0:
		return 300
	case rank <= 50 && rank > 0:
		return 200
	case rank <= 100 && rank > 0:
		return 100
	default:
		return 0
	}
}
