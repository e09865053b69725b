package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/logging"
)

const leaderboardDefaultLimit = 100

// LeaderboardService serves the ranking views and runs the scheduled
// maintenance passes over the projection.
type LeaderboardService struct {
	leaderboardRepo domain.LeaderboardRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(leaderboardRepo domain.LeaderboardRepository) *LeaderboardService {
	return &LeaderboardService{leaderboardRepo: leaderboardRepo}
}

// Top returns the ranked entries for a scope.
func (s *LeaderboardService) Top(ctx context.Context, scope string, limit int) ([]*domain.LeaderboardEntry, error) {
	if !domain.ValidScope(scope) {
		return nil, fmt.Errorf("unknown leaderboard scope: %s", scope)
	}
	if limit <= 0 || limit > leaderboardDefaultLimit {
		limit = leaderboardDefaultLimit
	}
	return s.leaderboardRepo.Top(ctx, scope, limit)
}

// Entry returns one user's row in a scope.
func (s *LeaderboardService) Entry(ctx context.Context, scope string, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
	if !domain.ValidScope(scope) {
		return nil, fmt.Errorf("unknown leaderboard scope: %s", scope)
	}
	return s.leaderboardRepo.GetEntry(ctx, scope, userID)
}

// RefreshRanks rewrites the rank columns. Runs on a schedule.
func (s *LeaderboardService) RefreshRanks(ctx context.Context) error {
	if err := s.leaderboardRepo.RecomputeRanks(ctx); err != nil {
		return err
	}
	logging.Logg.Debug("leaderboard ranks refreshed")
	return nil
}

// EndSeason pays the season rewards and opens a fresh season window.
func (s *LeaderboardService) EndSeason(ctx context.Context) error {
	if err := s.leaderboardRepo.AwardSeasonRewards(ctx); err != nil {
		return err
	}
	logging.Logg.Info("season ended, rewards paid")
	return nil
}

// ResetSeason abandons the running season without payouts. For voided
// competitions; EndSeason is the normal close.
func (s *LeaderboardService) ResetSeason(ctx context.Context) error {
	if err := s.leaderboardRepo.ResetSeason(ctx); err != nil {
		return err
	}
	logging.Logg.Info("season reset without payouts")
	return nil
}
