package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
)

const miningColumns = `
	user_id, mining_start_time, mining_level, mining_power, mining_streak,
	total_mined, last_claim_time, daily_mining_count, created_at, updated_at
`

// MiningRepositoryImpl implements the MiningRepository interface
type MiningRepositoryImpl struct {
	db *infra.Database
}

// NewMiningRepository creates a new MiningRepository
func NewMiningRepository(db *infra.Database) domain.MiningRepository {
	return &MiningRepositoryImpl{db: db}
}

func scanMining(row pgx.Row) (*domain.Mining, error) {
	m := &domain.Mining{}
	err := row.Scan(
		&m.UserID,
		&m.MiningStartTime,
		&m.MiningLevel,
		&m.MiningPower,
		&m.MiningStreak,
		&m.TotalMined,
		&m.LastClaimTime,
		&m.DailyMiningCount,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetOrInit retrieves the user's mining state, creating it lazily with
// the base rate.
func (r *MiningRepositoryImpl) GetOrInit(ctx context.Context, userID uuid.UUID) (*domain.Mining, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO mining (user_id, mining_power)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING`+miningColumns, userID, domain.BaseMiningRate)

	m, err := scanMining(row)
	if err != nil {
		return nil, fmt.Errorf("failed to init mining state: %w", err)
	}
	return m, nil
}

// Start begins a new cycle. An unclaimed cycle that has already run its
// full duration may be restarted; a running one is rejected.
func (r *MiningRepositoryImpl) Start(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		m, err := scanMining(tx.QueryRow(ctx, `SELECT`+miningColumns+`FROM mining WHERE user_id = $1`, userID))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to read mining state: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO mining (user_id, mining_power, mining_start_time, updated_at)
				VALUES ($1, $2, $3, NOW())
			`, userID, domain.BaseMiningRate, now)
			if err != nil {
				return fmt.Errorf("failed to create mining state: %w", err)
			}
			return nil
		}

		if m.MiningStartTime != nil && now.Sub(*m.MiningStartTime) < domain.MiningDuration {
			return domain.ErrMiningInProgress
		}

		_, err = tx.Exec(ctx, `
			UPDATE mining SET mining_start_time = $1, updated_at = NOW() WHERE user_id = $2
		`, now, userID)
		if err != nil {
			return fmt.Errorf("failed to start mining: %w", err)
		}
		return nil
	})
}

// Claim atomically closes an elapsed cycle: reward and milestone bonus
// to the balance, streak advanced, cycle cleared, history appended and
// the leaderboard projection kept in step.
func (r *MiningRepositoryImpl) Claim(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.MiningClaim, error) {
	var claim *domain.MiningClaim

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		m, err := scanMining(tx.QueryRow(ctx, `SELECT`+miningColumns+`FROM mining WHERE user_id = $1`, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoMiningCycle
			}
			return fmt.Errorf("failed to read mining state: %w", err)
		}

		if m.MiningStartTime == nil {
			return domain.ErrNoMiningCycle
		}
		if !m.CycleElapsed(now) {
			return domain.ErrClaimNotReady
		}

		newStreak := domain.NextStreak(m.MiningStreak, m.LastClaimTime, now)
		reward := domain.MiningReward(m.MiningPower, newStreak)
		milestone := domain.MilestoneBonus(m.MiningStreak, newStreak)
		credit := reward + milestone

		dailyCount := 1
		if m.LastClaimTime != nil && domain.SameDay(*m.LastClaimTime, now) {
			dailyCount = m.DailyMiningCount + 1
		}

		_, err = tx.Exec(ctx, `
			UPDATE mining
			SET mining_start_time = NULL,
			    mining_streak = $1,
			    total_mined = total_mined + $2,
			    last_claim_time = $3,
			    daily_mining_count = $4,
			    updated_at = NOW()
			WHERE user_id = $5
		`, newStreak, reward, now, dailyCount, userID)
		if err != nil {
			return fmt.Errorf("failed to update mining state: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET points = points + $1, updated_at = NOW() WHERE id = $2
		`, credit, userID)
		if err != nil {
			return fmt.Errorf("failed to credit mining reward: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO mining_history (id, user_id, reward, streak, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), userID, reward, newStreak, now)
		if err != nil {
			return fmt.Errorf("failed to append mining history: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard SET points = points + $1, updated_at = NOW() WHERE user_id = $2
		`, credit, userID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}

		claim = &domain.MiningClaim{
			Reward:         reward,
			Streak:         newStreak,
			MilestoneBonus: milestone,
			TotalMined:     m.TotalMined + reward,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Upgrade buys the next power level with points
func (r *MiningRepositoryImpl) Upgrade(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Mining, error) {
	var updated *domain.Mining

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		m, err := scanMining(tx.QueryRow(ctx, `SELECT`+miningColumns+`FROM mining WHERE user_id = $1`, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoMiningCycle
			}
			return fmt.Errorf("failed to read mining state: %w", err)
		}

		if m.MiningLevel >= domain.MaxMiningLevel {
			return domain.ErrMaxMiningLevel
		}

		cost := domain.UpgradeCost(m.MiningLevel)

		var points int64
		err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&points)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if points < cost {
			return domain.ErrInsufficientFunds
		}

		newLevel := m.MiningLevel + 1
		newPower := domain.MiningPower(newLevel)

		_, err = tx.Exec(ctx, `
			UPDATE users SET points = points - $1, updated_at = NOW() WHERE id = $2
		`, cost, userID)
		if err != nil {
			return fmt.Errorf("failed to debit upgrade cost: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE mining SET mining_level = $1, mining_power = $2, updated_at = NOW() WHERE user_id = $3
		`, newLevel, newPower, userID)
		if err != nil {
			return fmt.Errorf("failed to upgrade mining power: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard SET points = points - $1, updated_at = NOW() WHERE user_id = $2
		`, cost, userID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}

		m.MiningLevel = newLevel
		m.MiningPower = newPower
		m.UpdatedAt = now
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// HistoryByUser lists claim records, newest first
func (r *MiningRepositoryImpl) HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.MiningHistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, reward, streak, created_at
		FROM mining_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mining history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.MiningHistoryEntry
	for rows.Next() {
		e := &domain.MiningHistoryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Reward, &e.Streak, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mining history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mining history: %w", err)
	}
	return entries, nil
}
