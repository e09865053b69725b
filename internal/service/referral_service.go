package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

const referralHistoryLimit = 50

// ReferralNotifier pushes referral events to the player's Telegram chat.
// Implementations must treat failures as non-fatal.
type ReferralNotifier interface {
	SendNewReferral(chatID int64, referredName string, bonus int64) error
	SendCommission(chatID int64, amount int64, kind domain.BonusKind) error
}

// ReferralService owns referral codes, bindings and the commission
// ledger. Commission accrual is best-effort: it runs after the parent
// operation has committed and never fails it.
type ReferralService struct {
	userRepo     domain.UserRepository
	referralRepo domain.ReferralRepository
	notifRepo    domain.NotificationRepository
	notifier     ReferralNotifier
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	userRepo domain.UserRepository,
	referralRepo domain.ReferralRepository,
	notifRepo domain.NotificationRepository,
	notifier ReferralNotifier,
) *ReferralService {
	return &ReferralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		notifRepo:    notifRepo,
		notifier:     notifier,
	}
}

const (
	codeLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateReferralCode produces a code in the XX-XXXXX format.
func GenerateReferralCode() (string, error) {
	pick := func(alphabet string, n int) (string, error) {
		out := make([]byte, n)
		for i := range out {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
			if err != nil {
				return "", fmt.Errorf("failed to generate referral code: %w", err)
			}
			out[i] = alphabet[idx.Int64()]
		}
		return string(out), nil
	}

	prefix, err := pick(codeLetters, 2)
	if err != nil {
		return "", err
	}
	suffix, err := pick(codeAlphabet, 5)
	if err != nil {
		return "", err
	}
	return prefix + "-" + suffix, nil
}

// EnsureCode returns the user's referral code, minting one on first use.
// Code collisions are retried a few times; the unique constraint on the
// column is the real guard.
func (s *ReferralService) EnsureCode(ctx context.Context, userID uuid.UUID) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := GenerateReferralCode()
		if err != nil {
			return "", err
		}
		assigned, err := s.userRepo.EnsureReferralCode(ctx, userID, code)
		if err == nil {
			return assigned, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// Bind applies a referral code for a user and notifies the referrer.
func (s *ReferralService) Bind(ctx context.Context, userID uuid.UUID, code string) (*domain.Referral, error) {
	referral, err := s.referralRepo.Bind(ctx, userID, code, time.Now())
	if err != nil {
		return nil, err
	}

	s.notifyNewReferral(ctx, referral)
	return referral, nil
}

func (s *ReferralService) notifyNewReferral(ctx context.Context, referral *domain.Referral) {
	if err := s.notifRepo.Add(ctx, &domain.Notification{
		ID:        uuid.New(),
		UserID:    referral.ReferrerID,
		Type:      domain.NotifyNewReferral,
		Amount:    referral.Amount,
		FromUser:  &referral.ReferredID,
		CreatedAt: time.Now(),
	}); err != nil {
		logging.Logg.Warn("failed to record referral notification", "error", err)
	}

	if s.notifier == nil {
		return
	}
	referrer, err := s.userRepo.GetByID(ctx, referral.ReferrerID)
	if err != nil {
		logging.Logg.Warn("failed to load referrer for notification", "error", err)
		return
	}
	referred, err := s.userRepo.GetByID(ctx, referral.ReferredID)
	if err != nil {
		logging.Logg.Warn("failed to load referred user for notification", "error", err)
		return
	}
	if err := s.notifier.SendNewReferral(referrer.TelegramID, referred.DisplayName, referral.Amount); err != nil {
		logging.Logg.Warn("failed to send referral notification", "error", err)
	}
}

// AccrueCommission credits the source user's referrer with a commission
// on an earned amount. No referrer or a zero commission is a quiet
// no-op, and any failure is logged rather than propagated: the parent
// operation has already committed.
func (s *ReferralService) AccrueCommission(ctx context.Context, sourceUserID uuid.UUID, kind domain.BonusKind, amount int64) {
	referrerID, err := s.referralRepo.GetReferrerID(ctx, sourceUserID)
	if err != nil {
		logging.Logg.Warn("failed to resolve referrer for commission", "error", err)
		return
	}
	if referrerID == nil {
		return
	}

	commission := domain.Commission(amount, kind)
	if commission <= 0 {
		return
	}

	if err := s.referralRepo.AddPending(ctx, *referrerID, kind, commission); err != nil {
		logging.Logg.Error("failed to accrue referral commission",
			"referrer_id", *referrerID, "kind", string(kind), "amount", commission, "error", err)
		return
	}

	if err := s.notifRepo.Add(ctx, &domain.Notification{
		ID:        uuid.New(),
		UserID:    *referrerID,
		Type:      domain.NotifyReferralBonus,
		Amount:    commission,
		BonusType: string(kind),
		FromUser:  &sourceUserID,
		CreatedAt: time.Now(),
	}); err != nil {
		logging.Logg.Warn("failed to record commission notification", "error", err)
	}

	if s.notifier != nil {
		referrer, err := s.userRepo.GetByID(ctx, *referrerID)
		if err == nil {
			if err := s.notifier.SendCommission(referrer.TelegramID, commission, kind); err != nil {
				logging.Logg.Warn("failed to send commission notification", "error", err)
			}
		}
	}
}

// Pending returns the caller's unclaimed commission buckets.
func (s *ReferralService) Pending(ctx context.Context, userID uuid.UUID) (*domain.PendingBonuses, error) {
	return s.referralRepo.GetPending(ctx, userID)
}

// Claim moves all pending commission into the balance. An empty pending
// bucket rejects with ErrNothingToClaim.
func (s *ReferralService) Claim(ctx context.Context, userID uuid.UUID) (*domain.ReferralClaimEntry, error) {
	return s.referralRepo.ClaimPending(ctx, userID, time.Now())
}

// Stats assembles the referrals page view.
func (s *ReferralService) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReferralStats, error) {
	code, err := s.EnsureCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.referralRepo.GetPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.referralRepo.ListByReferrer(ctx, userID, referralHistoryLimit)
	if err != nil {
		return nil, err
	}

	return &domain.ReferralStats{
		Code:           code,
		TotalReferrals: user.TotalReferrals,
		TotalEarnings:  user.TotalReferralEarnings,
		Pending:        *pending,
		History:        history,
	}, nil
}
