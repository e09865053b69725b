package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
)

const leaderboardColumns = `
	scope, user_id, display_name, COALESCE(username, ''), points,
	wins, losses, win_rate, total_trades, rank, updated_at
`

// LeaderboardRepositoryImpl implements the LeaderboardRepository interface
type LeaderboardRepositoryImpl struct {
	db *infra.Database
}

// NewLeaderboardRepository creates a new LeaderboardRepository
func NewLeaderboardRepository(db *infra.Database) domain.LeaderboardRepository {
	return &LeaderboardRepositoryImpl{db: db}
}

func scanLeaderboardEntry(row pgx.Row) (*domain.LeaderboardEntry, error) {
	e := &domain.LeaderboardEntry{}
	err := row.Scan(
		&e.Scope,
		&e.UserID,
		&e.DisplayName,
		&e.Username,
		&e.Points,
		&e.Wins,
		&e.Losses,
		&e.WinRate,
		&e.TotalTrades,
		&e.Rank,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Top lists the highest-ranked entries for a scope
func (r *LeaderboardRepositoryImpl) Top(ctx context.Context, scope string, limit int) ([]*domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+leaderboardColumns+`
		FROM leaderboard
		WHERE scope = $1
		ORDER BY points DESC, updated_at ASC
		LIMIT $2
	`, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LeaderboardEntry
	for rows.Next() {
		e, err := scanLeaderboardEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}

// GetEntry retrieves one user's row in a scope
func (r *LeaderboardRepositoryImpl) GetEntry(ctx context.Context, scope string, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
	e, err := scanLeaderboardEntry(r.db.QueryRow(ctx, `
		SELECT`+leaderboardColumns+`FROM leaderboard WHERE scope = $1 AND user_id = $2
	`, scope, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}
	return e, nil
}

// RecomputeRanks rewrites the rank column for both scopes from current
// points. Runs on a schedule; reads between runs see slightly stale
// ranks but always-fresh points.
func (r *LeaderboardRepositoryImpl) RecomputeRanks(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		UPDATE leaderboard l
		SET rank = ranked.new_rank
		FROM (
			SELECT scope, user_id,
			       RANK() OVER (PARTITION BY scope ORDER BY points DESC, updated_at ASC) AS new_rank
			FROM leaderboard
		) ranked
		WHERE l.scope = ranked.scope AND l.user_id = ranked.user_id AND l.rank <> ranked.new_rank
	`)
	if err != nil {
		return fmt.Errorf("failed to recompute ranks: %w", err)
	}
	return nil
}

// AwardSeasonRewards pays the rank-based season rewards into balances
// and all-time rows, then zeroes the season scope, all in one
// transaction so a crash can neither double-pay nor skip the reset.
func (r *LeaderboardRepositoryImpl) AwardSeasonRewards(ctx context.Context) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT user_id, RANK() OVER (ORDER BY points DESC, updated_at ASC) AS rank
			FROM leaderboard
			WHERE scope = $1 AND points > 0
			ORDER BY points DESC, updated_at ASC
			LIMIT 100
		`, domain.ScopeSeason)
		if err != nil {
			return fmt.Errorf("failed to rank season: %w", err)
		}

		type payout struct {
			userID uuid.UUID
			reward int64
		}
		var payouts []payout
		for rows.Next() {
			var userID uuid.UUID
			var rank int
			if err := rows.Scan(&userID, &rank); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan season rank: %w", err)
			}
			if reward := domain.SeasonReward(rank); reward > 0 {
				payouts = append(payouts, payout{userID: userID, reward: reward})
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating season ranks: %w", err)
		}

		for _, p := range payouts {
			_, err = tx.Exec(ctx, `
				UPDATE users SET points = points + $1, updated_at = NOW() WHERE id = $2
			`, p.reward, p.userID)
			if err != nil {
				return fmt.Errorf("failed to pay season reward: %w", err)
			}
			_, err = tx.Exec(ctx, `
				UPDATE leaderboard SET points = points + $1, updated_at = NOW()
				WHERE scope = $2 AND user_id = $3
			`, p.reward, domain.ScopeAllTime, p.userID)
			if err != nil {
				return fmt.Errorf("failed to project season reward: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard
			SET points = 0, wins = 0, losses = 0, win_rate = 0, total_trades = 0, rank = 0, updated_at = NOW()
			WHERE scope = $1
		`, domain.ScopeSeason)
		if err != nil {
			return fmt.Errorf("failed to reset season: %w", err)
		}
		return nil
	})
}

// ResetSeason zeroes all season rows for a fresh competition window
func (r *LeaderboardRepositoryImpl) ResetSeason(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		UPDATE leaderboard
		SET points = 0, wins = 0, losses = 0, win_rate = 0, total_trades = 0, rank = 0, updated_at = NOW()
		WHERE scope = $1
	`, domain.ScopeSeason)
	if err != nil {
		return fmt.Errorf("failed to reset season: %w", err)
	}
	return nil
}
