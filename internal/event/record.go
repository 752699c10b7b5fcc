package event

import (
	"github.com/google/uuid"
)

// OpType discriminates committed pool operations.
type OpType int32

const (
	OpTypeUnknown OpType = iota
	OpTypeDeposit
	OpTypeWithdrawal
)

func (ot OpType) String() string {
	switch ot {
	case OpTypeDeposit:
		return "Deposit"
	case OpTypeWithdrawal:
		return "Withdrawal"
	default:
		return "Unknown"
	}
}

// OperationRecord describes one committed mutation of the pool. Records are
// emitted only after the operation's two-phase commit completes, so every
// record corresponds to state that actually took effect.
type OperationRecord struct {
	// Monotonic sequence assigned by the pool ledger under its mutation lock.
	Sequence uint64 `json:"sequence"`

	Op OpType `json:"-"`

	// Op as a string for the wire/audit representation.
	OpName string `json:"op"`

	Caller  uuid.UUID `json:"caller"`
	StakeID uuid.UUID `json:"stake_id"`

	// Amount staked (deposit) or gross amount released (withdrawal), e8s.
	Amount uint64 `json:"amount"`

	// Fee charged on withdrawal; zero for deposits.
	Fee uint64 `json:"fee"`

	LockPeriodDays uint32 `json:"lock_period_days,omitempty"`
	AccountID      string `json:"account_id"`

	// Pool aggregate immediately after this operation committed.
	PoolTotalAfter  uint64 `json:"pool_total_after"`
	StakerCount     int    `json:"staker_count"`
	TotalStakeCount int    `json:"total_stake_count"`

	// Seconds since epoch, from the pool's clock adapter.
	Timestamp uint64 `json:"timestamp"`
}
