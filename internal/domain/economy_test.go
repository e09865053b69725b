package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettleWin(t *testing.T) {
	out := Settle(DirectionBuy, 100.0, 101.5, 500)

	assert.True(t, out.IsWin)
	assert.Equal(t, int64(1000), out.PointsChange)
	assert.Equal(t, int64(500), out.BalanceDelta)
	assert.Equal(t, int64(500), out.Profit)
}

func TestSettleLoss(t *testing.T) {
	out := Settle(DirectionBuy, 100.0, 99.0, 500)

	assert.False(t, out.IsWin)
	assert.Equal(t, int64(0), out.PointsChange)
	assert.Equal(t, int64(-500), out.BalanceDelta)
	assert.Equal(t, int64(-500), out.Profit)
}

func TestSettleSellDirection(t *testing.T) {
	win := Settle(DirectionSell, 100.0, 98.0, 200)
	assert.True(t, win.IsWin)
	assert.Equal(t, int64(200), win.BalanceDelta)

	loss := Settle(DirectionSell, 100.0, 102.0, 200)
	assert.False(t, loss.IsWin)
	assert.Equal(t, int64(-200), loss.BalanceDelta)
}

func TestSettleTieIsLoss(t *testing.T) {
	for _, direction := range []string{DirectionBuy, DirectionSell} {
		out := Settle(direction, 100.0, 100.0, 300)
		assert.False(t, out.IsWin, "equal entry and exit must settle as a loss for %s", direction)
		assert.Equal(t, int64(-300), out.BalanceDelta)
	}
}

func TestSettleBalanceDeltaIsPointsChangeMinusStake(t *testing.T) {
	for _, amount := range []int64{50, 100, 1234} {
		win := Settle(DirectionBuy, 1.0, 2.0, amount)
		assert.Equal(t, win.PointsChange-amount, win.BalanceDelta)

		loss := Settle(DirectionBuy, 2.0, 1.0, amount)
		assert.Equal(t, loss.PointsChange-amount, loss.BalanceDelta)
	}
}

func TestSettledBalance(t *testing.T) {
	loss := Settle(DirectionBuy, 100.0, 99.0, 100)
	win := Settle(DirectionBuy, 100.0, 101.0, 100)

	// enough balance left: the stake debits cleanly
	next, err := SettledBalance(250, loss)
	assert.NoError(t, err)
	assert.Equal(t, int64(150), next)

	// exactly the stake left still settles
	next, err = SettledBalance(100, loss)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), next)

	// balance spent elsewhere since the order opened: the loss cannot
	// drive the balance negative
	_, err = SettledBalance(50, loss)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// a win never needs funds on hand
	next, err = SettledBalance(0, win)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), next)
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 100.0, WinRate(5, 0))
	assert.Equal(t, 50.0, WinRate(5, 5))
	assert.InDelta(t, 33.333, WinRate(1, 2), 0.001)
}

func TestMiningPower(t *testing.T) {
	assert.Equal(t, int64(100), MiningPower(0))
	assert.Equal(t, int64(110), MiningPower(1))
	assert.Equal(t, int64(200), MiningPower(10))
	// The tier switch applies the higher rate to the whole level count.
	assert.Equal(t, int64(320), MiningPower(11))
	assert.Equal(t, int64(500), MiningPower(20))
	assert.Equal(t, int64(730), MiningPower(21))
	assert.Equal(t, int64(1000), MiningPower(30))
	// Out-of-range levels clamp.
	assert.Equal(t, int64(100), MiningPower(-3))
	assert.Equal(t, int64(1000), MiningPower(99))
}

func TestUpgradeCost(t *testing.T) {
	assert.Equal(t, int64(1000), UpgradeCost(0))
	assert.Equal(t, int64(4000), UpgradeCost(1))
	assert.Equal(t, int64(900000), UpgradeCost(29))
}

func TestMiningReward(t *testing.T) {
	// base power, no streak multiplier
	assert.Equal(t, int64(300), MiningReward(100, 1))
	// 7-day streak applies the 1.25x multiplier
	assert.Equal(t, int64(375), MiningReward(100, 7))
	// 365-day streak applies the 2.5x multiplier
	assert.Equal(t, int64(750), MiningReward(100, 365))
}

func TestStreakMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, StreakMultiplier(0))
	assert.Equal(t, 1.0, StreakMultiplier(6))
	assert.Equal(t, 1.25, StreakMultiplier(7))
	assert.Equal(t, 1.25, StreakMultiplier(29))
	assert.Equal(t, 1.5, StreakMultiplier(30))
	assert.Equal(t, 1.75, StreakMultiplier(90))
	assert.Equal(t, 2.0, StreakMultiplier(180))
	assert.Equal(t, 2.5, StreakMultiplier(400))
}

func TestMilestoneBonus(t *testing.T) {
	assert.Equal(t, int64(0), MilestoneBonus(5, 6))
	assert.Equal(t, int64(500), MilestoneBonus(6, 7))
	// already past the milestone: nothing unlocks again
	assert.Equal(t, int64(0), MilestoneBonus(7, 8))
	assert.Equal(t, int64(2500), MilestoneBonus(29, 30))
	// a reset-then-rebuild crossing multiple rungs in one step pays each once
	assert.Equal(t, int64(3000), MilestoneBonus(0, 30))
	assert.Equal(t, int64(100000), MilestoneBonus(364, 365))
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, NextStreak(0, nil, now))

	yesterday := now.Add(-24 * time.Hour)
	assert.Equal(t, 6, NextStreak(5, &yesterday, now))

	sameDay := now.Add(-2 * time.Hour)
	assert.Equal(t, 5, NextStreak(5, &sameDay, now))

	twoDaysAgo := now.Add(-48 * time.Hour)
	assert.Equal(t, 1, NextStreak(5, &twoDaysAgo, now))

	// the day boundary is calendar-based, not 24h-based
	lateYesterday := time.Date(2026, 3, 9, 23, 50, 0, 0, time.UTC)
	earlyToday := time.Date(2026, 3, 10, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, 3, NextStreak(2, &lateYesterday, earlyToday))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC)
	b := time.Date(2026, 3, 10, 23, 55, 0, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestDailyLoginBonus(t *testing.T) {
	assert.Equal(t, int64(0), DailyLoginBonus(0))
	assert.Equal(t, int64(100), DailyLoginBonus(1))
	assert.Equal(t, int64(600), DailyLoginBonus(6))
	assert.Equal(t, int64(1500), DailyLoginBonus(7))
	// streaks past a week keep paying the day-7 bonus
	assert.Equal(t, int64(1500), DailyLoginBonus(30))
}

func TestCommission(t *testing.T) {
	assert.Equal(t, int64(10), Commission(100, BonusMining))
	assert.Equal(t, int64(5), Commission(100, BonusTrading))
	// fractional commission floors
	assert.Equal(t, int64(0), Commission(9, BonusMining))
	assert.Equal(t, int64(4), Commission(99, BonusTrading))
}

func TestCommissionAccruesPerEvent(t *testing.T) {
	// Per-event flooring: three 99-point trades pay less than one
	// 297-point trade would. The ledger records each event on its own.
	var perEvent int64
	for i := 0; i < 3; i++ {
		perEvent += Commission(99, BonusTrading)
	}
	assert.Equal(t, int64(12), perEvent)
	assert.Equal(t, int64(14), Commission(297, BonusTrading))
}

func TestSeasonReward(t *testing.T) {
	assert.Equal(t, int64(1000), SeasonReward(1))
	assert.Equal(t, int64(800), SeasonReward(2))
	assert.Equal(t, int64(600), SeasonReward(3))
	assert.Equal(t, int64(400), SeasonReward(4))
	assert.Equal(t, int64(400), SeasonReward(10))
	assert.Equal(t, int64(300), SeasonReward(11))
	assert.Equal(t, int64(200), SeasonReward(50))
	assert.Equal(t, int64(100), SeasonReward(100))
	assert.Equal(t, int64(0), SeasonReward(101))
	assert.Equal(t, int64(0), SeasonReward(0))
}
