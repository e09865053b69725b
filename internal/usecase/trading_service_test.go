package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/service"
)

type stubOrderRepo struct {
	domain.OrderRepository

	live      []*domain.Order
	byID      *domain.Order
	opened    *domain.Order
	settled   *domain.Order
	outcome   *domain.SettlementOutcome
	settleErr error
}

func (s *stubOrderRepo) GetLiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.live, nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if s.byID == nil || s.byID.ID != id {
		return nil, domain.ErrOrderNotFound
	}
	return s.byID, nil
}

func (s *stubOrderRepo) Open(ctx context.Context, order *domain.Order) error {
	s.opened = order
	return nil
}

func (s *stubOrderRepo) Settle(ctx context.Context, orderID, userID uuid.UUID, now time.Time) (*domain.Order, *domain.SettlementOutcome, error) {
	if s.settleErr != nil {
		return nil, nil, s.settleErr
	}
	if s.settled == nil {
		return nil, nil, domain.ErrOrderNotFound
	}
	return s.settled, s.outcome, nil
}

type stubUserRepo struct {
	domain.UserRepository
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

type accrual struct {
	referrer uuid.UUID
	kind     domain.BonusKind
	amount   int64
}

type stubReferralRepo struct {
	domain.ReferralRepository

	referrer *uuid.UUID
	accruals []accrual
}

func (s *stubReferralRepo) GetReferrerID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	return s.referrer, nil
}

func (s *stubReferralRepo) AddPending(ctx context.Context, referrerID uuid.UUID, kind domain.BonusKind, amount int64) error {
	s.accruals = append(s.accruals, accrual{referrer: referrerID, kind: kind, amount: amount})
	return nil
}

type stubNotifRepo struct {
	domain.NotificationRepository
	added []*domain.Notification
}

func (s *stubNotifRepo) Add(ctx context.Context, n *domain.Notification) error {
	s.added = append(s.added, n)
	return nil
}

type stubPrices struct {
	price float64
}

func (s *stubPrices) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return s.price, nil
}

func newTradingFixture(referrer *uuid.UUID) (*TradingService, *stubOrderRepo, *stubReferralRepo, *stubPrices) {
	orders := &stubOrderRepo{}
	referrals := &stubReferralRepo{referrer: referrer}
	referralSvc := service.NewReferralService(&stubUserRepo{}, referrals, &stubNotifRepo{}, nil)

	prices := &stubPrices{}
	trading := NewTradingService(orders, prices, referralSvc)
	return trading, orders, referrals, prices
}

func TestOpenOrderChecksTimeframeLockFirst(t *testing.T) {
	trading, orders, _, _ := newTradingFixture(nil)
	userID := uuid.New()

	orders.live = []*domain.Order{{
		UserID:    userID,
		Timeframe: domain.Timeframe15m,
		Status:    domain.OrderActive,
	}}

	// amount is also below minimum; the lock must win
	_, err := trading.OpenOrder(context.Background(), userID, "BTCUSDT", domain.DirectionBuy, domain.Timeframe15m, 10)
	assert.ErrorIs(t, err, domain.ErrTimeframeLocked)
	assert.Nil(t, orders.opened)
}

func TestOpenOrderRejectsBelowMinimum(t *testing.T) {
	trading, orders, _, _ := newTradingFixture(nil)

	_, err := trading.OpenOrder(context.Background(), uuid.New(), "BTCUSDT", domain.DirectionBuy, domain.Timeframe1h, 49)
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)
	assert.Nil(t, orders.opened)
}

func TestOpenOrderRejectsBadInput(t *testing.T) {
	trading, _, _, _ := newTradingFixture(nil)

	_, err := trading.OpenOrder(context.Background(), uuid.New(), "BTCUSDT", "hold", domain.Timeframe1h, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)

	_, err = trading.OpenOrder(context.Background(), uuid.New(), "BTCUSDT", domain.DirectionBuy, domain.Timeframe("2h"), 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeframe)
}

func TestOpenOrderSuccess(t *testing.T) {
	referrerID := uuid.New()
	trading, orders, referrals, prices := newTradingFixture(&referrerID)
	prices.price = 65000.0

	userID := uuid.New()
	order, err := trading.OpenOrder(context.Background(), userID, "btcusdt", domain.DirectionBuy, domain.Timeframe1h, 500)
	require.NoError(t, err)

	assert.Equal(t, orders.opened, order)
	assert.Equal(t, "BTCUSDT", order.Symbol)
	assert.Equal(t, 65000.0, order.EntryPrice)
	assert.Equal(t, domain.OrderActive, order.Status)
	assert.WithinDuration(t, order.CreatedAt.Add(time.Hour), order.EndTime, time.Second)

	// the referrer's stake cut accrues on open: floor(500 * 5%)
	require.Len(t, referrals.accruals, 1)
	assert.Equal(t, referrerID, referrals.accruals[0].referrer)
	assert.Equal(t, domain.BonusTrading, referrals.accruals[0].kind)
	assert.Equal(t, int64(25), referrals.accruals[0].amount)
}

func TestOrderLookupIsScopedToOwner(t *testing.T) {
	trading, orders, _, _ := newTradingFixture(nil)

	owner := uuid.New()
	orders.byID = &domain.Order{ID: uuid.New(), UserID: owner}

	order, err := trading.Order(context.Background(), owner, orders.byID.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.byID, order)

	// someone else's order looks like a missing one
	_, err = trading.Order(context.Background(), uuid.New(), orders.byID.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = trading.Order(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestClaimOrderDepletedBalanceRejects(t *testing.T) {
	referrerID := uuid.New()
	trading, orders, referrals, _ := newTradingFixture(&referrerID)

	// the settlement re-validates the balance; the rejection must reach
	// the caller as-is and accrue nothing
	orders.settleErr = domain.ErrInsufficientFunds

	_, err := trading.ClaimOrder(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Empty(t, referrals.accruals)
}

func TestClaimOrderAccruesCommissionOnWin(t *testing.T) {
	referrerID := uuid.New()
	trading, orders, referrals, _ := newTradingFixture(&referrerID)

	userID := uuid.New()
	result := domain.ResultWin
	profit := int64(500)
	orders.settled = &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		Result: &result,
		Profit: &profit,
	}
	orders.outcome = &domain.SettlementOutcome{IsWin: true, Profit: profit}

	_, err := trading.ClaimOrder(context.Background(), userID, orders.settled.ID)
	require.NoError(t, err)

	require.Len(t, referrals.accruals, 1)
	assert.Equal(t, int64(25), referrals.accruals[0].amount)
}

func TestClaimOrderNoCommissionOnLoss(t *testing.T) {
	referrerID := uuid.New()
	trading, orders, referrals, _ := newTradingFixture(&referrerID)

	userID := uuid.New()
	result := domain.ResultLoss
	profit := int64(-500)
	orders.settled = &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		Result: &result,
		Profit: &profit,
	}
	orders.outcome = &domain.SettlementOutcome{IsWin: false, Profit: profit}

	_, err := trading.ClaimOrder(context.Background(), userID, orders.settled.ID)
	require.NoError(t, err)
	assert.Empty(t, referrals.accruals)
}
