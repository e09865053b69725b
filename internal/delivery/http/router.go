package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "cryptohustle/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler        *AuthHandler
	UserHandler        *UserHandler
	TradingHandler     *TradingHandler
	MiningHandler      *MiningHandler
	ReferralHandler    *ReferralHandler
	TaskHandler        *TaskHandler
	LeaderboardHandler *LeaderboardHandler
	AdminHandler       *AdminHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for high-frequency polling endpoints to reduce noise
			path := c.Request().URL.Path
			if path == "/health" {
				return true
			}
			if strings.HasSuffix(path, "/api/prices") {
				return true
			}
			if strings.HasSuffix(path, "/api/prices/stream") {
				return true
			}
			return false
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "cryptohustle-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/telegram", config.AuthHandler.Telegram)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Prices (public; the Mini App polls these before sign-in completes)
	api.GET("/prices", config.TradingHandler.GetPrices)
	api.GET("/prices/stream", config.TradingHandler.StreamPrices)

	// User routes (protected with AuthMiddleware)
	user := api.Group("/user", custommiddleware.AuthMiddleware)
	{
		user.GET("/me", config.UserHandler.GetMe)
		user.GET("/notifications", config.UserHandler.GetNotifications)
	}

	// Trading routes
	trading := api.Group("/trading", custommiddleware.AuthMiddleware)
	{
		trading.GET("/timeframes", config.TradingHandler.GetTimeframes)
		trading.GET("/orders", config.TradingHandler.GetOrders)
		trading.POST("/orders", config.TradingHandler.OpenOrder)
		trading.GET("/orders/:id", config.TradingHandler.GetOrder)
		trading.POST("/orders/:id/claim", config.TradingHandler.ClaimOrder)
		trading.GET("/history", config.TradingHandler.GetHistory)
	}

	// Mining routes
	mining := api.Group("/mining", custommiddleware.AuthMiddleware)
	{
		mining.GET("", config.MiningHandler.GetStatus)
		mining.POST("/start", config.MiningHandler.Start)
		mining.POST("/claim", config.MiningHandler.Claim)
		mining.POST("/upgrade", config.MiningHandler.Upgrade)
		mining.GET("/history", config.MiningHandler.GetHistory)
	}

	// Referral routes
	referrals := api.Group("/referrals", custommiddleware.AuthMiddleware)
	{
		referrals.GET("", config.ReferralHandler.GetStats)
		referrals.POST("/bind", config.ReferralHandler.Bind)
		referrals.POST("/claim", config.ReferralHandler.Claim)
	}

	// Task routes
	tasks := api.Group("/tasks", custommiddleware.AuthMiddleware)
	{
		tasks.GET("", config.TaskHandler.List)
		tasks.POST("/:id/start", config.TaskHandler.Start)
		tasks.POST("/:id/complete", config.TaskHandler.Complete)
		tasks.POST("/:id/claim", config.TaskHandler.Claim)
	}

	// Leaderboard routes
	leaderboard := api.Group("/leaderboard", custommiddleware.AuthMiddleware)
	{
		leaderboard.GET("", config.LeaderboardHandler.Top)
		leaderboard.GET("/me", config.LeaderboardHandler.Me)
	}

	// Admin routes (protected with Auth + Admin middleware)
	admin := api.Group("/admin", custommiddleware.AuthMiddleware, custommiddleware.AdminMiddleware)
	{
		admin.GET("/tasks", config.AdminHandler.ListTasks)
		admin.POST("/tasks", config.AdminHandler.CreateTask)
		admin.PUT("/tasks/:id", config.AdminHandler.UpdateTask)
		admin.DELETE("/tasks/:id", config.AdminHandler.DeleteTask)
		admin.POST("/season/end", config.AdminHandler.EndSeason)
		admin.POST("/season/reset", config.AdminHandler.ResetSeason)
		admin.POST("/leaderboard/refresh", config.AdminHandler.RefreshRanks)
	}
}
