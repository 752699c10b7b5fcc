package pool

import (
	"errors"
	"fmt"
)

// Every rejected operation returns one of these outcomes. All are
// recoverable and terminal for the request; none are fatal to the service.
var (
	ErrInvalidLockPeriod       = errors.New("invalid lock period: must be 90, 180, or 360 days")
	ErrAmountTooSmall          = fmt.Errorf("amount must be at least %d e8s to cover fees", MinimumFee)
	ErrInsufficientPoolBalance = errors.New("insufficient settlement balance for deposit")
	ErrNoStakesFound           = errors.New("no stakes found for user")
	ErrInvalidStakeIndex       = errors.New("invalid stake index")
	ErrFeeExceedsAmount        = errors.New("insufficient amount to cover transfer fee")
	ErrNotAuthorized           = errors.New("caller is not authorized")
)

// LockedError rejects a withdrawal attempted before the stake's unlock time.
type LockedError struct {
	RemainingSeconds uint64
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("stake is still locked: %d seconds remaining", e.RemainingSeconds)
}

// rejectReason maps an error to a stable metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLockPeriod):
		return "invalid_lock_period"
	case errors.Is(err, ErrAmountTooSmall):
		return "amount_too_small"
	case errors.Is(err, ErrInsufficientPoolBalance):
		return "insufficient_pool_balance"
	case errors.Is(err, ErrNoStakesFound):
		return "no_stakes_found"
	case errors.Is(err, ErrInvalidStakeIndex):
		return "invalid_stake_index"
	case errors.Is(err, ErrFeeExceedsAmount):
		return "fee_exceeds_amount"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	default:
		var locked *LockedError
		if errors.As(err, &locked) {
			return "stake_locked"
		}
		return "transfer_failed"
	}
}
