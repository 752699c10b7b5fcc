package pool

import (
	"github.com/google/uuid"

	"stakepool/internal/identity"
)

// MinimumFee is the flat transfer fee in e8s. Deposits below it are rejected
// and withdrawals deduct it from the released amount.
const MinimumFee uint64 = 10_000

const secondsPerDay = 24 * 60 * 60

// ValidLockPeriod reports whether days is one of the supported lock periods.
func ValidLockPeriod(days uint32) bool {
	switch days {
	case 90, 180, 360:
		return true
	default:
		return false
	}
}

// StakeRecord is one deposit instance. Records are immutable after creation
// and removed exactly once, by the withdrawal that releases them.
type StakeRecord struct {
	// StakeID is a stable internal identifier. The external withdraw
	// contract is positional; the id exists for audit rows and events.
	StakeID        uuid.UUID           `json:"stake_id"`
	Amount         uint64              `json:"amount"`
	LockPeriodDays uint32              `json:"lock_period_days"`
	StakeTime      uint64              `json:"stake_time"`
	UnlockTime     uint64              `json:"unlock_time"`
	Subaccount     identity.Subaccount `json:"subaccount"`
	AccountID      string              `json:"account_id"`
}

// StakeBook is one identity's stake collection. Stakes keep insertion order;
// a record's position is its external reference index, so removal shifts
// later indices down by one.
type StakeBook struct {
	Stakes      []StakeRecord `json:"stakes"`
	TotalStaked uint64        `json:"total_staked"`
}

// clone returns a deep copy safe to hand to callers.
func (b *StakeBook) clone() *StakeBook {
	out := &StakeBook{
		Stakes:      make([]StakeRecord, len(b.Stakes)),
		TotalStaked: b.TotalStaked,
	}
	copy(out.Stakes, b.Stakes)
	return out
}

// PoolInfo is the pool-wide aggregate, consistent with the ledger state at
// the instant of the query.
type PoolInfo struct {
	TotalAmount     uint64 `json:"total_amount"`
	StakerCount     int    `json:"staker_count"`
	TotalStakeCount int    `json:"total_stake_count"`
}

// DepositReceipt confirms a committed deposit.
type DepositReceipt struct {
	StakeID        uuid.UUID `json:"stake_id"`
	Amount         uint64    `json:"amount"`
	LockPeriodDays uint32    `json:"lock_period_days"`
	AccountID      string    `json:"account_id"`
	UnlockTime     uint64    `json:"unlock_time"`
}

// WithdrawalReceipt confirms a committed withdrawal.
type WithdrawalReceipt struct {
	StakeID     uuid.UUID `json:"stake_id"`
	Transferred uint64    `json:"transferred"`
	Fee         uint64    `json:"fee"`
	AccountID   string    `json:"account_id"`
}
