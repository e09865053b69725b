package domain

import "errors"

// Rejected-precondition errors. These carry the specific reason to the
// caller and are never retried automatically.
var (
	ErrInvalidDirection  = errors.New("invalid order direction")
	ErrInvalidTimeframe  = errors.New("invalid timeframe")
	ErrTimeframeLocked   = errors.New("an order is already active for this timeframe")
	ErrBelowMinimum      = errors.New("amount is below the timeframe minimum")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotReady     = errors.New("order is not ready to claim")
	ErrExitPriceNotFixed = errors.New("exit price is not fixed yet")

	ErrMiningInProgress = errors.New("mining is already in progress")
	ErrClaimNotReady    = errors.New("mining cycle is not finished yet")
	ErrNoMiningCycle    = errors.New("no mining cycle to claim")
	ErrMaxMiningLevel   = errors.New("maximum mining level reached")

	ErrAlreadyReferred  = errors.New("a referral code was already used")
	ErrInvalidReferral  = errors.New("invalid referral code")
	ErrReferrerAtLimit  = errors.New("referrer has reached the referral limit")
	ErrNothingToClaim   = errors.New("nothing to claim")

	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotAvailable = errors.New("task is not available")
	ErrTaskNotCompleted = errors.New("task is not completed yet")

	ErrUserNotFound = errors.New("user not found")
)

// IsRejection reports whether err is a precondition rejection that
// should surface as a 4xx with its own message rather than a generic
// failure.
func IsRejection(err error) bool {
	for _, r := range []error{
		ErrInvalidDirection, ErrInvalidTimeframe,
		ErrTimeframeLocked, ErrBelowMinimum, ErrInsufficientFunds,
		ErrOrderNotFound, ErrOrderNotReady, ErrExitPriceNotFixed,
		ErrMiningInProgress, ErrClaimNotReady, ErrNoMiningCycle, ErrMaxMiningLevel,
		ErrAlreadyReferred, ErrInvalidReferral, ErrReferrerAtLimit, ErrNothingToClaim,
		ErrTaskNotFound, ErrTaskNotAvailable, ErrTaskNotCompleted,
		ErrUserNotFound,
	} {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
