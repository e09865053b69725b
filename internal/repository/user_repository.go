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

const userColumns = `
	id, telegram_id, display_name, COALESCE(username, ''), role, COALESCE(password_hash, ''),
	points, wins, losses, total_trades, win_rate, daily_streak,
	total_referrals, total_referral_earnings, referral_code, referrer_id,
	last_login_date, created_at, updated_at
`

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *infra.Database
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *infra.Database) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.DisplayName,
		&user.Username,
		&user.Role,
		&user.PasswordHash,
		&user.Points,
		&user.Wins,
		&user.Losses,
		&user.TotalTrades,
		&user.WinRate,
		&user.DailyStreak,
		&user.TotalReferrals,
		&user.TotalReferralEarnings,
		&user.ReferralCode,
		&user.ReferrerID,
		&user.LastLoginDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// Create creates a new user together with its leaderboard rows
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (
				id, telegram_id, display_name, username, role, password_hash,
				points, daily_streak, last_login_date, created_at, updated_at
			) VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $10)
		`,
			user.ID,
			user.TelegramID,
			user.DisplayName,
			user.Username,
			user.Role,
			user.PasswordHash,
			user.Points,
			user.DailyStreak,
			user.LastLoginDate,
			user.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		for _, scope := range []string{domain.ScopeAllTime, domain.ScopeSeason} {
			_, err = tx.Exec(ctx, `
				INSERT INTO leaderboard (scope, user_id, display_name, username, points, updated_at)
				VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
			`, scope, user.ID, user.DisplayName, user.Username, user.Points, user.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to init leaderboard row: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT`+userColumns+`FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepositoryImpl) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT`+userColumns+`FROM users WHERE telegram_id = $1`, telegramID)
	return scanUser(row)
}

// GetByUsername retrieves a user by username (admin console login)
func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT`+userColumns+`FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// EnsureReferralCode lazily assigns a referral code and returns the
// effective one. A concurrent assignment wins silently.
func (r *UserRepositoryImpl) EnsureReferralCode(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET referral_code = $1, updated_at = NOW()
		WHERE id = $2 AND referral_code IS NULL
	`, code, userID)
	if err != nil {
		return "", fmt.Errorf("failed to assign referral code: %w", err)
	}

	var current *string
	err = r.db.QueryRow(ctx, `SELECT referral_code FROM users WHERE id = $1`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to read referral code: %w", err)
	}
	if current == nil {
		return "", fmt.Errorf("referral code was not assigned")
	}
	return *current, nil
}

// RecordLogin advances the daily streak and credits the login bonus
func (r *UserRepositoryImpl) RecordLogin(ctx context.Context, userID uuid.UUID, streak int, bonus int64, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET daily_streak = $1, points = points + $2, last_login_date = $3, updated_at = NOW()
		WHERE id = $4
	`, streak, bonus, now, userID)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetAggregates returns the counters task conditions are checked against
func (r *UserRepositoryImpl) GetAggregates(ctx context.Context, userID uuid.UUID) (domain.UserAggregates, error) {
	var agg domain.UserAggregates
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(m.mining_streak, 0), COALESCE(m.daily_mining_count, 0),
		       u.total_referrals, u.total_trades
		FROM users u
		LEFT JOIN mining m ON m.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(&agg.MiningStreak, &agg.DailyMiningCount, &agg.TotalReferrals, &agg.TotalTrades)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agg, domain.ErrUserNotFound
		}
		return agg, fmt.Errorf("failed to get user aggregates: %w", err)
	}
	return agg, nil
}
