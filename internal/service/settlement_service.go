package service

import (
	"context"
	"fmt"
	"time"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

// SettlementService sweeps expired orders and fixes their exit price,
// moving them to ready_to_claim. Fixing is exactly-once: the guarded
// update in the store makes a concurrent sweep of the same order a
// no-op.
type SettlementService struct {
	orderRepo domain.OrderRepository
	prices    *PriceFeed
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(orderRepo domain.OrderRepository, prices *PriceFeed) *SettlementService {
	return &SettlementService{
		orderRepo: orderRepo,
		prices:    prices,
	}
}

// SweepExpired fixes the exit price of every active order whose
// timeframe has elapsed. Per-order failures are logged and skipped; the
// next sweep retries them.
func (s *SettlementService) SweepExpired(ctx context.Context) error {
	orders, err := s.orderRepo.GetExpiredActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to get expired orders: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	logging.Logg.Info("sweeping expired orders", "count", len(orders))

	priceCache := make(map[string]float64)
	for _, order := range orders {
		price, ok := priceCache[order.Symbol]
		if !ok {
			price, err = s.prices.GetPrice(ctx, order.Symbol)
			if err != nil {
				logging.Logg.Warn("no price for expired order, skipping",
					"order_id", order.ID, "symbol", order.Symbol, "error", err)
				continue
			}
			priceCache[order.Symbol] = price
		}

		fixed, err := s.orderRepo.FixExitPrice(ctx, order.ID, price)
		if err != nil {
			logging.Logg.Error("failed to fix exit price",
				"order_id", order.ID, "symbol", order.Symbol, "error", err)
			continue
		}
		if fixed {
			logging.Logg.Info("exit price fixed",
				"order_id", order.ID, "symbol", order.Symbol, "price", price)
		}
	}
	return nil
}
