package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
)

const miningHistoryLimit = 50

// MiningService drives the claim cycle and power upgrades on top of the
// mining store and accrues the referrer's cut after a claim commits.
type MiningService struct {
	miningRepo domain.MiningRepository
	referrals  *ReferralService
}

// NewMiningService creates a new MiningService
func NewMiningService(miningRepo domain.MiningRepository, referrals *ReferralService) *MiningService {
	return &MiningService{
		miningRepo: miningRepo,
		referrals:  referrals,
	}
}

// Status returns the user's mining state, initializing it on first use.
func (s *MiningService) Status(ctx context.Context, userID uuid.UUID) (*domain.Mining, error) {
	return s.miningRepo.GetOrInit(ctx, userID)
}

// Start begins a new mining cycle.
func (s *MiningService) Start(ctx context.Context, userID uuid.UUID) error {
	return s.miningRepo.Start(ctx, userID, time.Now())
}

// Claim closes an elapsed cycle and pays the reward. The referrer's
// commission accrues afterwards so its failure can never undo the
// claim.
func (s *MiningService) Claim(ctx context.Context, userID uuid.UUID) (*domain.MiningClaim, error) {
	claim, err := s.miningRepo.Claim(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	s.referrals.AccrueCommission(ctx, userID, domain.BonusMining, claim.Reward)
	return claim, nil
}

// Upgrade buys the next mining power level.
func (s *MiningService) Upgrade(ctx context.Context, userID uuid.UUID) (*domain.Mining, error) {
	return s.miningRepo.Upgrade(ctx, userID, time.Now())
}

// History lists the user's recent claims.
func (s *MiningService) History(ctx context.Context, userID uuid.UUID) ([]*domain.MiningHistoryEntry, error) {
	return s.miningRepo.HistoryByUser(ctx, userID, miningHistoryLimit)
}
