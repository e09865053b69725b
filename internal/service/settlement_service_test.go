package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptohustle/internal/domain"
)

type fakeOrderRepo struct {
	domain.OrderRepository

	expired []*domain.Order
	fixed   map[uuid.UUID]float64
}

func (f *fakeOrderRepo) GetExpiredActive(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	return f.expired, nil
}

func (f *fakeOrderRepo) FixExitPrice(ctx context.Context, orderID uuid.UUID, price float64) (bool, error) {
	if f.fixed == nil {
		f.fixed = make(map[uuid.UUID]float64)
	}
	if _, done := f.fixed[orderID]; done {
		return false, nil
	}
	f.fixed[orderID] = price
	return true, nil
}

func TestSweepExpiredFixesPrices(t *testing.T) {
	btcFirst := &domain.Order{ID: uuid.New(), Symbol: "BTCUSDT"}
	btcSecond := &domain.Order{ID: uuid.New(), Symbol: "BTCUSDT"}
	noQuote := &domain.Order{ID: uuid.New(), Symbol: "DOGEUSDT"}

	repo := &fakeOrderRepo{expired: []*domain.Order{btcFirst, btcSecond, noQuote}}

	feed := NewPriceFeed([]string{"BTCUSDT"})
	feed.restURL = "http://127.0.0.1:0" // unreachable: only the cache answers
	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 65000.0})

	svc := NewSettlementService(repo, feed)
	require.NoError(t, svc.SweepExpired(context.Background()))

	assert.Equal(t, 65000.0, repo.fixed[btcFirst.ID])
	assert.Equal(t, 65000.0, repo.fixed[btcSecond.ID])
	// no price available: left for the next sweep, not failed
	_, fixed := repo.fixed[noQuote.ID]
	assert.False(t, fixed)
}

func TestSweepExpiredIdempotent(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), Symbol: "BTCUSDT"}
	repo := &fakeOrderRepo{expired: []*domain.Order{order}}

	feed := NewPriceFeed([]string{"BTCUSDT"})
	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 64000.0})

	svc := NewSettlementService(repo, feed)
	require.NoError(t, svc.SweepExpired(context.Background()))

	// a second sweep over the same order must not move the fixed price
	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 70000.0})
	require.NoError(t, svc.SweepExpired(context.Background()))

	assert.Equal(t, 64000.0, repo.fixed[order.ID])
}

func TestSweepExpiredEmpty(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewSettlementService(repo, NewPriceFeed(nil))
	assert.NoError(t, svc.SweepExpired(context.Background()))
}
