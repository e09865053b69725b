package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
)

const orderColumns = `
	id, user_id, symbol, direction, timeframe, amount, entry_price,
	fixed_exit_price, status, result, profit, created_at, end_time, completed_at
`

// OrderRepositoryImpl implements the OrderRepository interface
type OrderRepositoryImpl struct {
	db *infra.Database
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *infra.Database) domain.OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var tf string
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Symbol,
		&order.Direction,
		&tf,
		&order.Amount,
		&order.EntryPrice,
		&order.FixedExitPrice,
		&order.Status,
		&order.Result,
		&order.Profit,
		&order.CreatedAt,
		&order.EndTime,
		&order.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	order.Timeframe = domain.Timeframe(tf)
	return order, nil
}

// Open validates preconditions in order (timeframe lock, then funds; the
// minimum-stake check happens in the trading service) and persists the
// order. The partial unique index backs the lock check under races.
func (r *OrderRepositoryImpl) Open(ctx context.Context, order *domain.Order) error {
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var live int
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM orders
			WHERE user_id = $1 AND timeframe = $2 AND status IN ('active', 'ready_to_claim')
		`, order.UserID, string(order.Timeframe)).Scan(&live)
		if err != nil {
			return fmt.Errorf("failed to check live orders: %w", err)
		}
		if live > 0 {
			return domain.ErrTimeframeLocked
		}

		var points int64
		err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, order.UserID).Scan(&points)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if points < order.Amount {
			return domain.ErrInsufficientFunds
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO orders (
				id, user_id, symbol, direction, timeframe, amount,
				entry_price, status, created_at, end_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			order.ID,
			order.UserID,
			order.Symbol,
			order.Direction,
			string(order.Timeframe),
			order.Amount,
			order.EntryPrice,
			order.Status,
			order.CreatedAt,
			order.EndTime,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrTimeframeLocked
		}
		return err
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT`+orderColumns+`FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetLiveByUser retrieves a user's active and ready_to_claim orders
func (r *OrderRepositoryImpl) GetLiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+orderColumns+`
		FROM orders
		WHERE user_id = $1 AND status IN ('active', 'ready_to_claim')
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query live orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// GetExpiredActive retrieves active orders whose timeframe has elapsed
func (r *OrderRepositoryImpl) GetExpiredActive(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+orderColumns+`
		FROM orders
		WHERE status = 'active' AND end_time <= $1
		ORDER BY end_time ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// FixExitPrice locks in the exit price exactly once. The status guard
// makes concurrent calls safe: only the first committed update applies,
// later ones see zero affected rows.
func (r *OrderRepositoryImpl) FixExitPrice(ctx context.Context, orderID uuid.UUID, price float64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'ready_to_claim', fixed_exit_price = $1
		WHERE id = $2 AND status = 'active'
	`, price, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to fix exit price: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Settle atomically resolves a ready_to_claim order: balance and stats
// on the user row, terminal fields on the order, the append-only history
// record and both leaderboard projections, all in one transaction.
func (r *OrderRepositoryImpl) Settle(ctx context.Context, orderID, userID uuid.UUID, now time.Time) (*domain.Order, *domain.SettlementOutcome, error) {
	var (
		order   *domain.Order
		outcome domain.SettlementOutcome
	)

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, `SELECT`+orderColumns+`FROM orders WHERE id = $1`, orderID))
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.OrderReadyToClaim {
			return domain.ErrOrderNotReady
		}
		if order.FixedExitPrice == nil {
			return domain.ErrExitPriceNotFixed
		}

		var points int64
		var wins, losses int
		err = tx.QueryRow(ctx, `SELECT points, wins, losses FROM users WHERE id = $1`, userID).Scan(&points, &wins, &losses)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("failed to read user stats: %w", err)
		}

		outcome = domain.Settle(order.Direction, order.EntryPrice, *order.FixedExitPrice, order.Amount)

		// The balance was only checked at open, never escrowed; other
		// orders or upgrades may have spent it since.
		if _, err := domain.SettledBalance(points, outcome); err != nil {
			return err
		}

		winInc, lossInc := 0, 1
		result := domain.ResultLoss
		if outcome.IsWin {
			winInc, lossInc = 1, 0
			result = domain.ResultWin
		}
		winRate := domain.WinRate(wins+winInc, losses+lossInc)

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET points = points + $1,
			    wins = wins + $2,
			    losses = losses + $3,
			    total_trades = total_trades + 1,
			    win_rate = $4,
			    updated_at = NOW()
			WHERE id = $5
		`, outcome.BalanceDelta, winInc, lossInc, winRate, userID)
		if err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET status = 'completed', result = $1, profit = $2, completed_at = $3
			WHERE id = $4
		`, result, outcome.Profit, now, orderID)
		if err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO order_history (
				id, order_id, user_id, symbol, direction, amount,
				entry_price, exit_price, result, profit, created_at, completed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			uuid.New(), orderID, userID, order.Symbol, order.Direction, order.Amount,
			order.EntryPrice, *order.FixedExitPrice, result, outcome.Profit, order.CreatedAt, now,
		)
		if err != nil {
			return fmt.Errorf("failed to append order history: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE leaderboard
			SET points = points + $1,
			    wins = wins + $2,
			    losses = losses + $3,
			    total_trades = total_trades + 1,
			    win_rate = $4,
			    updated_at = NOW()
			WHERE user_id = $5
		`, outcome.BalanceDelta, winInc, lossInc, winRate, userID)
		if err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}

		order.Status = domain.OrderCompleted
		order.Result = &result
		order.Profit = &outcome.Profit
		order.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, &outcome, nil
}

// HistoryByUser lists completed-order records, newest first
func (r *OrderRepositoryImpl) HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.OrderHistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, user_id, symbol, direction, amount,
		       entry_price, exit_price, result, profit, created_at, completed_at
		FROM order_history
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.OrderHistoryEntry
	for rows.Next() {
		e := &domain.OrderHistoryEntry{}
		err := rows.Scan(
			&e.ID, &e.OrderID, &e.UserID, &e.Symbol, &e.Direction, &e.Amount,
			&e.EntryPrice, &e.ExitPrice, &e.Result, &e.Profit, &e.CreatedAt, &e.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}
	return entries, nil
}
