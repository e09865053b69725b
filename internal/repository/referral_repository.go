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

// ReferralRepositoryImpl implements the ReferralRepository interface
type ReferralRepositoryImpl struct {
	db *infra.Database
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(db *infra.Database) domain.ReferralRepository {
	return &ReferralRepositoryImpl{db: db}
}

// Bind binds a referral code to a user, one-time only, paying the
// welcome bonus to both sides and recording the relationship.
func (r *ReferralRepositoryImpl) Bind(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*domain.Referral, error) {
	var referral *domain.Referral

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var existing *uuid.UUID
		err := tx.QueryRow(ctx, `SELECT referrer_id FROM users WHERE id = $1`, userID).Scan(&existing)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("failed to read user: %w", err)
		}
		if existing != nil {
			return domain.ErrAlreadyReferred
		}

		var referrerID uuid.UUID
		var totalReferrals int
		err = tx.QueryRow(ctx, `
			SELECT id, total_referrals FROM users WHERE referral_code = $1
		`, code).Scan(&referrerID, &totalReferrals)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrInvalidReferral
			}
			return fmt.Errorf("failed to resolve referral code: %w", err)
		}
		if referrerID == userID {
			return domain.ErrInvalidReferral
		}
		if totalReferrals >= domain.ReferralLimit {
			return domain.ErrReferrerAtLimit
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET referrer_id = $1, points = points + $2, updated_at = NOW() WHERE id = $3
		`, referrerID, domain.ReferralWelcomeBonus, userID)
		if err != nil {
			return fmt.Errorf("failed to bind referrer: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET points = points + $1,
			    total_referrals = total_referrals + 1,
			    total_referral_earnings = total_referral_earnings + $1,
			    updated_at = NOW()
			WHERE id = $2
		`, domain.ReferralWelcomeBonus, referrerID)
		if err != nil {
			return fmt.Errorf("failed to credit referrer: %w", err)
		}

		referral = &domain.Referral{
			ID:         uuid.New(),
			ReferrerID: referrerID,
			ReferredID: userID,
			Amount:     domain.ReferralWelcomeBonus,
			Type:       "welcome",
			Status:     "completed",
			CreatedAt:  now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO referrals (id, referrer_id, referred_id, amount, type, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, referral.ID, referral.ReferrerID, referral.ReferredID, referral.Amount,
			referral.Type, referral.Status, referral.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to record referral: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard SET points = points + $1, updated_at = NOW()
			WHERE user_id = $2 OR user_id = $3
		`, int64(domain.ReferralWelcomeBonus), userID, referrerID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

// GetReferrerID returns the user's bound referrer, nil when none
func (r *ReferralRepositoryImpl) GetReferrerID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var referrerID *uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT referrer_id FROM users WHERE id = $1`, userID).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read referrer: %w", err)
	}
	return referrerID, nil
}

// AddPending increments a referrer's pending bucket for a kind. The
// buckets only ever grow here; claims are the only reset path.
func (r *ReferralRepositoryImpl) AddPending(ctx context.Context, referrerID uuid.UUID, kind domain.BonusKind, amount int64) error {
	column := "trading"
	if kind == domain.BonusMining {
		column = "mining"
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO referral_bonuses (user_id, `+column+`, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET `+column+` = referral_bonuses.`+column+` + EXCLUDED.`+column+`, updated_at = NOW()
	`, referrerID, amount)
	if err != nil {
		return fmt.Errorf("failed to accrue %s commission: %w", column, err)
	}
	return nil
}

// GetPending retrieves the pending buckets, creating them lazily
func (r *ReferralRepositoryImpl) GetPending(ctx context.Context, userID uuid.UUID) (*domain.PendingBonuses, error) {
	p := &domain.PendingBonuses{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO referral_bonuses (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, mining, trading, last_claimed, updated_at
	`, userID).Scan(&p.UserID, &p.Mining, &p.Trading, &p.LastClaimed, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending bonuses: %w", err)
	}
	return p, nil
}

// ClaimPending atomically moves both buckets into the balance. Claiming
// with nothing pending rejects so the caller can tell the player.
func (r *ReferralRepositoryImpl) ClaimPending(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReferralClaimEntry, error) {
	entry := &domain.ReferralClaimEntry{ID: uuid.New(), UserID: userID, CreatedAt: now}

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var mining, trading int64
		err := tx.QueryRow(ctx, `
			SELECT mining, trading FROM referral_bonuses WHERE user_id = $1
		`, userID).Scan(&mining, &trading)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNothingToClaim
			}
			return fmt.Errorf("failed to read pending bonuses: %w", err)
		}

		total := mining + trading
		if total <= 0 {
			return domain.ErrNothingToClaim
		}

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET points = points + $1,
			    total_referral_earnings = total_referral_earnings + $1,
			    updated_at = NOW()
			WHERE id = $2
		`, total, userID)
		if err != nil {
			return fmt.Errorf("failed to credit pending bonuses: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE referral_bonuses
			SET mining = 0, trading = 0, last_claimed = $1, updated_at = NOW()
			WHERE user_id = $2
		`, now, userID)
		if err != nil {
			return fmt.Errorf("failed to reset pending bonuses: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO referral_history (id, user_id, amount, mining, trading, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, entry.ID, userID, total, mining, trading, now)
		if err != nil {
			return fmt.Errorf("failed to append referral history: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard SET points = points + $1, updated_at = NOW() WHERE user_id = $2
		`, total, userID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}

		entry.Amount = total
		entry.Mining = mining
		entry.Trading = trading
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByReferrer lists referral relationship entries
func (r *ReferralRepositoryImpl) ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit int) ([]*domain.Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, referrer_id, referred_id, amount, type, status, created_at
		FROM referrals
		WHERE referrer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, referrerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrals: %w", err)
	}
	defer rows.Close()

	var referrals []*domain.Referral
	for rows.Next() {
		ref := &domain.Referral{}
		err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Amount, &ref.Type, &ref.Status, &ref.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referrals: %w", err)
	}
	return referrals, nil
}
