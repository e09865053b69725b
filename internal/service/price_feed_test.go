package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptohustle/internal/domain"
)

func TestPriceFeedPublishAndSnapshot(t *testing.T) {
	feed := NewPriceFeed([]string{"btcusdt", "ETHUSDT"})

	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 65000.5, Change24h: 1.2})
	feed.publish(domain.PriceData{Symbol: "ETHUSDT", Price: 3200.0, Change24h: -0.4})
	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 65100.0, Change24h: 1.3})

	snapshot := feed.Snapshot()
	require.Len(t, snapshot, 2)
	// snapshot preserves the configured symbol order, last write wins
	assert.Equal(t, "BTCUSDT", snapshot[0].Symbol)
	assert.Equal(t, 65100.0, snapshot[0].Price)
	assert.Equal(t, "ETHUSDT", snapshot[1].Symbol)
}

func TestPriceFeedSubscribeFanOut(t *testing.T) {
	feed := NewPriceFeed([]string{"BTCUSDT"})

	first, cancelFirst := feed.Subscribe()
	second, cancelSecond := feed.Subscribe()
	defer cancelSecond()

	update := domain.PriceData{Symbol: "BTCUSDT", Price: 65000.0}
	feed.publish(update)

	for _, ch := range []<-chan domain.PriceData{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, update, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the update")
		}
	}

	// after unsubscribe the first channel sees no further updates
	cancelFirst()
	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 66000.0})

	select {
	case got := <-second:
		assert.Equal(t, 66000.0, got.Price)
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive the update")
	}
	select {
	case got := <-first:
		t.Fatalf("unsubscribed channel received %v", got)
	default:
	}
}

func TestPriceFeedSlowSubscriberDoesNotBlock(t *testing.T) {
	feed := NewPriceFeed([]string{"BTCUSDT"})

	_, cancel := feed.Subscribe()
	defer cancel()

	// more updates than the channel buffers; publish must not stall
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: float64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestPriceFeedGetPriceServesFreshCache(t *testing.T) {
	feed := NewPriceFeed([]string{"BTCUSDT"})
	// no REST endpoint behind this URL; a cache miss would fail loudly
	feed.restURL = "http://127.0.0.1:0"

	feed.publish(domain.PriceData{Symbol: "BTCUSDT", Price: 65000.0})

	price, err := feed.GetPrice(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, price)
}

func TestPriceFeedStreamURL(t *testing.T) {
	feed := NewPriceFeed([]string{"BTCUSDT", "ethusdt"})
	assert.Equal(t,
		"wss://stream.binance.com:9443/stream?streams=btcusdt@ticker/ethusdt@ticker",
		feed.streamURL())
}

func TestGenerateReferralCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{2}-[A-Z0-9]{5}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	// collisions in 50 draws over a 36^5 space would mean a broken RNG
	assert.Greater(t, len(seen), 45)
}
