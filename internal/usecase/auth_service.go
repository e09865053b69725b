package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cryptohustle/internal/adapter/telegram"
	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
	"cryptohustle/internal/service"
)

const initDataMaxAge = 24 * time.Hour

// AuthService signs players in through validated Telegram Mini App init
// data. First sign-in creates the account with the starting balance;
// every first sign-in of a calendar day advances the daily streak and
// pays the login bonus.
type AuthService struct {
	userRepo  domain.UserRepository
	referrals *service.ReferralService
	botToken  string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, referrals *service.ReferralService, botToken string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		referrals: referrals,
		botToken:  botToken,
	}
}

// SignInResult is what a successful Telegram sign-in yields.
type SignInResult struct {
	User       *domain.User
	IsNew      bool
	DailyBonus int64
}

// TelegramSignIn validates init data and returns the signed-in user,
// creating the account on first contact. A referral code is applied
// best-effort: a rejected code never fails the sign-in.
func (s *AuthService) TelegramSignIn(ctx context.Context, initData, referralCode string) (*SignInResult, error) {
	tgUser, err := telegram.ValidateInitData(initData, s.botToken, initDataMaxAge)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &SignInResult{}

	user, err := s.userRepo.GetByTelegramID(ctx, tgUser.ID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{
			ID:            uuid.New(),
			TelegramID:    tgUser.ID,
			DisplayName:   tgUser.DisplayName(),
			Username:      tgUser.Username,
			Role:          domain.RoleUser,
			Points:        domain.StartingPoints,
			DailyStreak:   1,
			LastLoginDate: now,
			CreatedAt:     now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		result.IsNew = true
	case err != nil:
		return nil, err
	default:
		if !domain.SameDay(user.LastLoginDate, now) {
			streak := domain.NextStreak(user.DailyStreak, &user.LastLoginDate, now)
			bonus := domain.DailyLoginBonus(streak)
			if err := s.userRepo.RecordLogin(ctx, user.ID, streak, bonus, now); err != nil {
				return nil, err
			}
			user.DailyStreak = streak
			user.Points += bonus
			user.LastLoginDate = now
			result.DailyBonus = bonus
		}
	}

	if referralCode != "" && user.ReferrerID == nil {
		if _, err := s.referrals.Bind(ctx, user.ID, referralCode); err != nil {
			if domain.IsRejection(err) {
				logging.Logg.Info("referral code rejected at sign-in",
					"user_id", user.ID, "error", err)
			} else {
				logging.Logg.Error("failed to apply referral code",
					"user_id", user.ID, "error", err)
			}
		} else {
			user.Points += domain.ReferralWelcomeBonus
		}
	}

	result.User = user
	return result, nil
}
