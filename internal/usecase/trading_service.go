package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
	"cryptohustle/internal/service"
)

const orderHistoryLimit = 50

// PriceSource yields the current quote for a symbol.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// TradingService runs the bet lifecycle: open against a live quote,
// settle on claim once the exit price is fixed. The stake is checked at
// open but only deducted at settlement, where the win credit and the
// deduction land in the same transaction.
type TradingService struct {
	orderRepo domain.OrderRepository
	prices    PriceSource
	referrals *service.ReferralService
}

// NewTradingService creates a new TradingService
func NewTradingService(
	orderRepo domain.OrderRepository,
	prices PriceSource,
	referrals *service.ReferralService,
) *TradingService {
	return &TradingService{
		orderRepo: orderRepo,
		prices:    prices,
		referrals: referrals,
	}
}

// OpenOrder validates and places a directional bet. Preconditions are
// checked in a fixed order: timeframe lock, then minimum stake, then
// balance.
func (s *TradingService) OpenOrder(ctx context.Context, userID uuid.UUID, symbol, direction string, timeframe domain.Timeframe, amount int64) (*domain.Order, error) {
	if !domain.ValidDirection(direction) {
		return nil, domain.ErrInvalidDirection
	}
	cfg, ok := domain.Timeframes[timeframe]
	if !ok {
		return nil, domain.ErrInvalidTimeframe
	}

	live, err := s.orderRepo.GetLiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, o := range live {
		if o.Timeframe == timeframe {
			return nil, domain.ErrTimeframeLocked
		}
	}

	if amount < cfg.MinAmount {
		return nil, domain.ErrBelowMinimum
	}

	symbol = strings.ToUpper(symbol)
	entryPrice, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Symbol:     symbol,
		Direction:  direction,
		Timeframe:  timeframe,
		Amount:     amount,
		EntryPrice: entryPrice,
		Status:     domain.OrderActive,
		CreatedAt:  now,
		EndTime:    now.Add(cfg.Duration),
	}

	if err := s.orderRepo.Open(ctx, order); err != nil {
		return nil, err
	}

	logging.Logg.Info("order opened",
		"order_id", order.ID, "user_id", userID, "symbol", symbol,
		"direction", direction, "timeframe", string(timeframe), "amount", amount)

	// The referrer earns on activity, not only on wins: the stake cut
	// accrues at open, the profit cut at settlement.
	s.referrals.AccrueCommission(ctx, userID, domain.BonusTrading, amount)

	return order, nil
}

// ClaimOrder settles a ready_to_claim order against its fixed exit
// price.
func (s *TradingService) ClaimOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, outcome, err := s.orderRepo.Settle(ctx, orderID, userID, time.Now())
	if err != nil {
		return nil, err
	}

	logging.Logg.Info("order settled",
		"order_id", order.ID, "user_id", userID, "result", *order.Result,
		"profit", *order.Profit)

	if outcome.IsWin {
		s.referrals.AccrueCommission(ctx, userID, domain.BonusTrading, outcome.Profit)
	}
	return order, nil
}

// Order returns one of the user's orders. Another user's order is
// indistinguishable from a missing one.
func (s *TradingService) Order(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// LiveOrders lists the user's active and ready_to_claim orders.
func (s *TradingService) LiveOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.GetLiveByUser(ctx, userID)
}

// History lists the user's settled orders, newest first.
func (s *TradingService) History(ctx context.Context, userID uuid.UUID) ([]*domain.OrderHistoryEntry, error) {
	return s.orderRepo.HistoryByUser(ctx, userID, orderHistoryLimit)
}
