package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"cryptohustle/internal/delivery/http/dto"
	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
	"cryptohustle/internal/middleware"
	"cryptohustle/internal/service"
	"cryptohustle/internal/usecase"
)

// TradingHandler handles bet and price endpoints
type TradingHandler struct {
	trading  *usecase.TradingService
	prices   *service.PriceFeed
	upgrader websocket.Upgrader
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(trading *usecase.TradingService, prices *service.PriceFeed) *TradingHandler {
	return &TradingHandler{
		trading: trading,
		prices:  prices,
		upgrader: websocket.Upgrader{
			// The Mini App is served from the Telegram webview origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// OpenOrder places a directional bet
// POST /api/trading/orders
func (h *TradingHandler) OpenOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.OpenOrderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Symbol == "" || req.Direction == "" || req.Timeframe == "" || req.Amount <= 0 {
		return BadRequestResponse(c, "symbol, direction, timeframe and amount are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.trading.OpenOrder(ctx, userID, req.Symbol, req.Direction, domain.Timeframe(req.Timeframe), req.Amount)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, order)
}

// ClaimOrder settles a ready_to_claim order
// POST /api/trading/orders/:id/claim
func (h *TradingHandler) ClaimOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid order ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.trading.ClaimOrder(ctx, userID, orderID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, order)
}

// GetOrder returns one of the caller's orders
// GET /api/trading/orders/:id
func (h *TradingHandler) GetOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid order ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.trading.Order(ctx, userID, orderID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, order)
}

// GetOrders lists the caller's live orders
// GET /api/trading/orders
func (h *TradingHandler) GetOrders(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.trading.LiveOrders(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load orders", err)
	}
	return SuccessResponse(c, orders)
}

// GetHistory lists the caller's settled orders
// GET /api/trading/history
func (h *TradingHandler) GetHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	history, err := h.trading.History(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load history", err)
	}
	return SuccessResponse(c, history)
}

// GetTimeframes lists the selectable bet durations
// GET /api/trading/timeframes
func (h *TradingHandler) GetTimeframes(c echo.Context) error {
	out := make([]dto.TimeframeOutput, 0, len(domain.Timeframes))
	for _, tf := range []domain.Timeframe{domain.Timeframe15m, domain.Timeframe1h, domain.Timeframe4h, domain.Timeframe1d} {
		cfg := domain.Timeframes[tf]
		out = append(out, dto.TimeframeOutput{
			Value:      string(tf),
			Label:      cfg.Label,
			DurationMs: cfg.Duration.Milliseconds(),
			MinAmount:  cfg.MinAmount,
		})
	}
	return SuccessResponse(c, out)
}

// GetPrices returns the latest quote for every tracked symbol
// GET /api/prices
func (h *TradingHandler) GetPrices(c echo.Context) error {
	return SuccessResponse(c, h.prices.Snapshot())
}

// StreamPrices pushes live quotes over a websocket until the client
// goes away
// GET /api/prices/stream
func (h *TradingHandler) StreamPrices(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	updates, unsubscribe := h.prices.Subscribe()
	defer unsubscribe()

	// Reads are discarded; the first read error means the client closed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case data := <-updates:
			if err := conn.WriteJSON(data); err != nil {
				logging.Logg.Debug("price stream client dropped", "error", err)
				return nil
			}
		}
	}
}
