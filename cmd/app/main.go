package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"cryptohustle/configs"
	"cryptohustle/internal/adapter/telegram"
	"cryptohustle/internal/database"
	delivery "cryptohustle/internal/delivery/http"
	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
	"cryptohustle/internal/logging"
	"cryptohustle/internal/repository"
	"cryptohustle/internal/service"
	"cryptohustle/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logging.Logg.Info(".env file not found, using environment variables")
	}

	cfg := configs.Load()
	ctx := context.Background()

	// Database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logging.Logg.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool); err != nil {
		logging.Logg.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	miningRepo := repository.NewMiningRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	ensureAdminUser(ctx, userRepo, cfg.Admin)

	// Services
	priceFeed := service.NewPriceFeed(cfg.Market.Symbols)
	priceFeed.Start(ctx)
	defer priceFeed.Stop()

	notifier := telegram.NewNotificationService(cfg.Telegram.BotToken)
	referralService := service.NewReferralService(userRepo, referralRepo, notifRepo, notifier)
	miningService := service.NewMiningService(miningRepo, referralService)
	settlementService := service.NewSettlementService(orderRepo, priceFeed)
	taskService := service.NewTaskService(taskRepo, userRepo)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo)

	tradingService := usecase.NewTradingService(orderRepo, priceFeed, referralService)
	authService := usecase.NewAuthService(userRepo, referralService, cfg.Telegram.BotToken)

	// Scheduler: settlement sweep + rank refresh
	scheduler := infra.NewScheduler(settlementService.SweepExpired, leaderboardService.RefreshRanks)
	if err := scheduler.Start(); err != nil {
		logging.Logg.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// HTTP server
	e := echo.New()
	e.HideBanner = true

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:        delivery.NewAuthHandler(authService, userRepo),
		UserHandler:        delivery.NewUserHandler(userRepo, notifRepo),
		TradingHandler:     delivery.NewTradingHandler(tradingService, priceFeed),
		MiningHandler:      delivery.NewMiningHandler(miningService),
		ReferralHandler:    delivery.NewReferralHandler(referralService),
		TaskHandler:        delivery.NewTaskHandler(taskService),
		LeaderboardHandler: delivery.NewLeaderboardHandler(leaderboardService),
		AdminHandler:       delivery.NewAdminHandler(taskService, leaderboardService),
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logging.Logg.Info("starting server", "addr", addr, "env", cfg.Server.Env)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logg.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Logg.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logging.Logg.Info("server exited gracefully")
}

// ensureAdminUser bootstraps the admin console account from the
// environment. Without credentials configured the console simply has no
// way in.
func ensureAdminUser(ctx context.Context, userRepo domain.UserRepository, cfg configs.AdminConfig) {
	if cfg.Username == "" || cfg.Password == "" {
		logging.Logg.Info("admin credentials not configured, skipping bootstrap")
		return
	}

	if _, err := userRepo.GetByUsername(ctx, cfg.Username); err == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		logging.Logg.Error("failed to hash admin password", "error", err)
		return
	}

	now := time.Now()
	admin := &domain.User{
		ID:            uuid.New(),
		DisplayName:   cfg.Username,
		Username:      cfg.Username,
		Role:          domain.RoleAdmin,
		PasswordHash:  string(hash),
		LastLoginDate: now,
		CreatedAt:     now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		logging.Logg.Error("failed to create admin user", "error", err)
		return
	}
	logging.Logg.Info("admin user created", "username", cfg.Username)
}
