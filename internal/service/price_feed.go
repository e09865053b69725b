package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

const (
	priceStaleAfter    = 15 * time.Second
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// PriceFeed maintains a live price cache for the tracked symbols from
// the Binance ticker stream and fans updates out to subscribers. When
// the stream is down or a price is stale it falls back to the REST API,
// so reads always see a usable quote.
type PriceFeed struct {
	wsURL      string
	restURL    string
	symbols    []string
	httpClient *http.Client

	mu      sync.RWMutex
	prices  map[string]domain.PriceData
	updated map[string]time.Time
	subs    map[chan domain.PriceData]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPriceFeed creates a PriceFeed tracking the given symbols.
func NewPriceFeed(symbols []string) *PriceFeed {
	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}
	return &PriceFeed{
		wsURL:   "wss://stream.binance.com:9443/stream",
		restURL: "https://api.binance.com",
		symbols: upper,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		prices:  make(map[string]domain.PriceData),
		updated: make(map[string]time.Time),
		subs:    make(map[chan domain.PriceData]struct{}),
	}
}

// Start launches the stream loop. It reconnects with exponential
// backoff until Stop is called.
func (f *PriceFeed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)
		delay := reconnectBaseDelay
		for {
			err := f.streamOnce(ctx)
			if ctx.Err() != nil {
				return
			}
			logging.Logg.Warn("price stream disconnected, reconnecting",
				"error", err, "delay", delay.String())

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
		}
	}()
}

// Stop tears the stream down and waits for the loop to exit.
func (f *PriceFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	if f.done != nil {
		<-f.done
	}
}

func (f *PriceFeed) streamURL() string {
	streams := make([]string, len(f.symbols))
	for i, s := range f.symbols {
		streams[i] = strings.ToLower(s) + "@ticker"
	}
	return f.wsURL + "?streams=" + strings.Join(streams, "/")
}

// tickerEvent is the combined-stream envelope around a 24h ticker.
type tickerEvent struct {
	Data struct {
		Symbol        string `json:"s"`
		LastPrice     string `json:"c"`
		ChangePercent string `json:"P"`
	} `json:"data"`
}

func (f *PriceFeed) streamOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial price stream: %w", err)
	}
	defer conn.Close()

	logging.Logg.Info("price stream connected", "symbols", len(f.symbols))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var event tickerEvent
		if err := conn.ReadJSON(&event); err != nil {
			return fmt.Errorf("failed to read price event: %w", err)
		}

		price, err := strconv.ParseFloat(event.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}
		change, _ := strconv.ParseFloat(event.Data.ChangePercent, 64)

		f.publish(domain.PriceData{
			Symbol:    event.Data.Symbol,
			Price:     price,
			Change24h: change,
		})
	}
}

func (f *PriceFeed) publish(data domain.PriceData) {
	f.mu.Lock()
	f.prices[data.Symbol] = data
	f.updated[data.Symbol] = time.Now()
	for ch := range f.subs {
		select {
		case ch <- data:
		default: // slow subscriber, drop rather than stall the stream
		}
	}
	f.mu.Unlock()
}

// Subscribe registers a listener for every price update. The returned
// cancel function must be called to release the channel.
func (f *PriceFeed) Subscribe() (<-chan domain.PriceData, func()) {
	ch := make(chan domain.PriceData, 64)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
}

// GetPrice returns the current price for a symbol. A fresh cached quote
// is served directly; otherwise it falls back to the REST API and
// refreshes the cache.
func (f *PriceFeed) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)

	f.mu.RLock()
	data, ok := f.prices[symbol]
	fresh := ok && time.Since(f.updated[symbol]) < priceStaleAfter
	f.mu.RUnlock()

	if fresh {
		return data.Price, nil
	}

	data, err := f.fetchTicker(ctx, symbol)
	if err != nil {
		if ok {
			// stale beats nothing when the REST API is down too
			logging.Logg.Warn("serving stale price", "symbol", symbol, "error", err)
			return f.prices[symbol].Price, nil
		}
		return 0, err
	}

	f.publish(data)
	return data.Price, nil
}

// Snapshot returns the latest quote for every tracked symbol that has
// one.
func (f *PriceFeed) Snapshot() []domain.PriceData {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.PriceData, 0, len(f.symbols))
	for _, s := range f.symbols {
		if data, ok := f.prices[s]; ok {
			out = append(out, data)
		}
	}
	return out
}

func (f *PriceFeed) fetchTicker(ctx context.Context, symbol string) (domain.PriceData, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", f.restURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PriceData{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domain.PriceData{}, fmt.Errorf("failed to fetch price from Binance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.PriceData{}, fmt.Errorf("Binance API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var ticker struct {
		Symbol        string `json:"symbol"`
		LastPrice     string `json:"lastPrice"`
		ChangePercent string `json:"priceChangePercent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return domain.PriceData{}, fmt.Errorf("failed to decode ticker: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil || price <= 0 {
		return domain.PriceData{}, fmt.Errorf("invalid price for symbol %s: %q", symbol, ticker.LastPrice)
	}
	change, _ := strconv.ParseFloat(ticker.ChangePercent, 64)

	return domain.PriceData{Symbol: ticker.Symbol, Price: price, Change24h: change}, nil
}
