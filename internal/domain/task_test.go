package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskConditionMet(t *testing.T) {
	agg := UserAggregates{
		MiningStreak:     7,
		DailyMiningCount: 3,
		TotalReferrals:   2,
		TotalTrades:      10,
	}

	tests := []struct {
		name      string
		condition *TaskCondition
		want      bool
	}{
		{"nil condition", nil, false},
		{"mining streak met", &TaskCondition{Type: ConditionMiningStreak, Target: 7}, true},
		{"mining streak not met", &TaskCondition{Type: ConditionMiningStreak, Target: 8}, false},
		{"mining daily met", &TaskCondition{Type: ConditionMiningDaily, Target: 3}, true},
		{"referrals met", &TaskCondition{Type: ConditionReferrals, Target: 1}, true},
		{"referrals not met", &TaskCondition{Type: ConditionReferrals, Target: 3}, false},
		{"trades met", &TaskCondition{Type: ConditionTrades, Target: 10}, true},
		{"unknown type", &TaskCondition{Type: "steps_walked", Target: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.condition.Met(agg))
		})
	}
}

func TestTaskExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Task{}).Expired(now), "no end time never expires")
	assert.True(t, (&Task{EndTime: &past}).Expired(now))
	assert.False(t, (&Task{EndTime: &future}).Expired(now))
}

func TestTimeframes(t *testing.T) {
	assert.True(t, Timeframe15m.Valid())
	assert.True(t, Timeframe1d.Valid())
	assert.False(t, Timeframe("2h").Valid())

	for tf, cfg := range Timeframes {
		assert.Equal(t, int64(50), cfg.MinAmount, "timeframe %s", tf)
		assert.Greater(t, cfg.Duration, time.Duration(0))
	}
	assert.Equal(t, 15*time.Minute, Timeframes[Timeframe15m].Duration)
	assert.Equal(t, 24*time.Hour, Timeframes[Timeframe1d].Duration)
}

func TestValidDirectionAndScope(t *testing.T) {
	assert.True(t, ValidDirection(DirectionBuy))
	assert.True(t, ValidDirection(DirectionSell))
	assert.False(t, ValidDirection("hold"))

	assert.True(t, ValidScope(ScopeAllTime))
	assert.True(t, ValidScope(ScopeSeason))
	assert.False(t, ValidScope("weekly"))
}

func TestMiningCycleElapsed(t *testing.T) {
	now := time.Now()

	m := &Mining{}
	assert.False(t, m.CycleElapsed(now), "no cycle started")

	started := now.Add(-MiningDuration + time.Minute)
	m.MiningStartTime = &started
	assert.False(t, m.CycleElapsed(now))

	done := now.Add(-MiningDuration)
	m.MiningStartTime = &done
	assert.True(t, m.CycleElapsed(now))
}
