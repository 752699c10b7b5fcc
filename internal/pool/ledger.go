package pool

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stakepool/internal/auth"
	"stakepool/internal/clock"
	"stakepool/internal/event"
	"stakepool/internal/identity"
	"stakepool/internal/observability"
	"stakepool/internal/treasury"
)

// Ledger owns every stake book and the pool-wide aggregate. All mutations —
// deposit, withdrawal, the subaccount nonce, and the treasury legs they
// imply — are serialized behind one mutex, so concurrent operations are
// linearizable and no caller ever observes a half-applied operation.
// Queries take the read lock and return deep copies.
type Ledger struct {
	mu        sync.RWMutex
	books     map[uuid.UUID]*StakeBook
	totalPool uint64
	sequence  uint64

	deriver  *identity.Deriver
	treasury treasury.Treasury
	clock    clock.Clock

	allowlist   *auth.Allowlist
	enforceAuth bool

	metrics *observability.Metrics
	logger  zerolog.Logger

	// recordChan receives an OperationRecord after each committed mutation.
	// Sends are non-blocking: a full channel drops the record and bumps a
	// counter, never stalling the mutation path. Nil disables emission.
	recordChan chan<- event.OperationRecord
}

// NewLedger wires the ledger's collaborators. allowlist may be nil when
// enforceAuth is false; metrics may be nil (tests); recordChan may be nil.
func NewLedger(
	deriver *identity.Deriver,
	tr treasury.Treasury,
	clk clock.Clock,
	allowlist *auth.Allowlist,
	enforceAuth bool,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	recordChan chan<- event.OperationRecord,
) *Ledger {
	return &Ledger{
		books:       make(map[uuid.UUID]*StakeBook),
		deriver:     deriver,
		treasury:    tr,
		clock:       clk,
		allowlist:   allowlist,
		enforceAuth: enforceAuth,
		metrics:     metrics,
		logger:      logger,
		recordChan:  recordChan,
	}
}

// Deposit locks amount for lockPeriodDays on behalf of caller. Validation
// order: lock period, minimum fee, settlement balance; the first failure
// wins and leaves all state untouched. On success the treasury is debited,
// a fresh subaccount is derived, and the record, book total, and pool total
// are committed in the same critical section.
func (l *Ledger) Deposit(caller uuid.UUID, amount uint64, lockPeriodDays uint32) (*DepositReceipt, error) {
	start := time.Now()

	if l.enforceAuth && !l.allowlist.IsAuthorized(caller) {
		return nil, l.reject("deposit", ErrNotAuthorized)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !ValidLockPeriod(lockPeriodDays) {
		return nil, l.reject("deposit", ErrInvalidLockPeriod)
	}
	if amount < MinimumFee {
		return nil, l.reject("deposit", ErrAmountTooSmall)
	}
	if amount > l.treasury.Available() {
		return nil, l.reject("deposit", ErrInsufficientPoolBalance)
	}

	// First phase: move funds at the settlement boundary. Nothing local has
	// mutated yet except the nonce, which is deliberately consumed even if
	// the transfer fails.
	subaccount, accountID := l.deriver.Derive(caller)

	if err := l.treasury.Debit(amount); err != nil {
		return nil, l.reject("deposit", fmt.Errorf("%w: %v", ErrInsufficientPoolBalance, err))
	}

	now := l.clock.NowSeconds()
	rec := StakeRecord{
		StakeID:        uuid.New(),
		Amount:         amount,
		LockPeriodDays: lockPeriodDays,
		StakeTime:      now,
		UnlockTime:     now + uint64(lockPeriodDays)*secondsPerDay,
		Subaccount:     subaccount,
		AccountID:      accountID,
	}

	book, ok := l.books[caller]
	if !ok {
		book = &StakeBook{}
		l.books[caller] = book
	}
	book.Stakes = append(book.Stakes, rec)
	book.TotalStaked += amount
	l.totalPool += amount

	l.commit(event.OperationRecord{
		Op:             event.OpTypeDeposit,
		Caller:         caller,
		StakeID:        rec.StakeID,
		Amount:         amount,
		LockPeriodDays: lockPeriodDays,
		AccountID:      accountID,
		Timestamp:      now,
	})

	l.logger.Info().
		Str("caller", caller.String()).
		Uint64("amount", amount).
		Uint32("lock_period_days", lockPeriodDays).
		Str("account_id", accountID).
		Msg("deposit committed")

	if l.metrics != nil {
		l.metrics.OpsApplied.WithLabelValues("deposit").Inc()
		l.metrics.OpDuration.WithLabelValues("deposit").Observe(time.Since(start).Seconds())
	}

	return &DepositReceipt{
		StakeID:        rec.StakeID,
		Amount:         amount,
		LockPeriodDays: lockPeriodDays,
		AccountID:      accountID,
		UnlockTime:     rec.UnlockTime,
	}, nil
}

// Withdraw releases the stake at stakeIndex in the caller's book. Indices
// are positional and shift down by one after every removal, so callers must
// re-query after any mutating call.
//
// The removal is two-phase: the record and totals are taken out first
// (reserve), then the treasury is credited; a failed credit rolls the
// record back into its original position, leaving state exactly as before.
func (l *Ledger) Withdraw(caller uuid.UUID, stakeIndex int) (*WithdrawalReceipt, error) {
	start := time.Now()

	if l.enforceAuth && !l.allowlist.IsAuthorized(caller) {
		return nil, l.reject("withdraw", ErrNotAuthorized)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.books[caller]
	if !ok {
		return nil, l.reject("withdraw", ErrNoStakesFound)
	}
	if stakeIndex < 0 || stakeIndex >= len(book.Stakes) {
		return nil, l.reject("withdraw", ErrInvalidStakeIndex)
	}

	rec := book.Stakes[stakeIndex]
	now := l.clock.NowSeconds()
	if now < rec.UnlockTime {
		return nil, l.reject("withdraw", &LockedError{RemainingSeconds: rec.UnlockTime - now})
	}

	// Fee sufficiency is checked before anything mutates: an amount equal to
	// the fee nets zero and must be rejected, not silently zero-transferred.
	var transferAmount uint64
	if rec.Amount > MinimumFee {
		transferAmount = rec.Amount - MinimumFee
	}
	if transferAmount == 0 {
		return nil, l.reject("withdraw", ErrFeeExceedsAmount)
	}

	// Reserve: remove the record and decrement totals.
	book.Stakes = slices.Delete(book.Stakes, stakeIndex, stakeIndex+1)
	book.TotalStaked -= rec.Amount
	l.totalPool -= rec.Amount

	if err := l.treasury.Credit(transferAmount); err != nil {
		// Roll back: reinsert at the original index and restore totals.
		book.Stakes = slices.Insert(book.Stakes, stakeIndex, rec)
		book.TotalStaked += rec.Amount
		l.totalPool += rec.Amount
		return nil, l.reject("withdraw", fmt.Errorf("settlement credit failed: %w", err))
	}

	l.commit(event.OperationRecord{
		Op:        event.OpTypeWithdrawal,
		Caller:    caller,
		StakeID:   rec.StakeID,
		Amount:    rec.Amount,
		Fee:       MinimumFee,
		AccountID: rec.AccountID,
		Timestamp: now,
	})

	l.logger.Info().
		Str("caller", caller.String()).
		Uint64("transferred", transferAmount).
		Uint64("fee", MinimumFee).
		Str("account_id", rec.AccountID).
		Msg("withdrawal committed")

	if l.metrics != nil {
		l.metrics.OpsApplied.WithLabelValues("withdraw").Inc()
		l.metrics.OpDuration.WithLabelValues("withdraw").Observe(time.Since(start).Seconds())
		l.metrics.FeesCharged.Add(float64(MinimumFee))
	}

	return &WithdrawalReceipt{
		StakeID:     rec.StakeID,
		Transferred: transferAmount,
		Fee:         MinimumFee,
		AccountID:   rec.AccountID,
	}, nil
}

// GetUserStakes returns a copy of the identity's stake book, or ok=false if
// the identity has never deposited. An identity that deposited and later
// withdrew everything still reports an (empty) book.
func (l *Ledger) GetUserStakes(user uuid.UUID) (*StakeBook, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	book, ok := l.books[user]
	if !ok {
		return nil, false
	}
	return book.clone(), true
}

// GetMyStakes is GetUserStakes scoped to the requesting caller.
func (l *Ledger) GetMyStakes(caller uuid.UUID) (*StakeBook, bool) {
	return l.GetUserStakes(caller)
}

// PoolInfo returns the pool aggregate: total locked amount, number of
// identities with a book (empty books count), and total stake records.
func (l *Ledger) PoolInfo() PoolInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.poolInfoLocked()
}

func (l *Ledger) poolInfoLocked() PoolInfo {
	stakeCount := 0
	for _, book := range l.books {
		stakeCount += len(book.Stakes)
	}
	return PoolInfo{
		TotalAmount:     l.totalPool,
		StakerCount:     len(l.books),
		TotalStakeCount: stakeCount,
	}
}

// Sequence reports the number of committed operations.
func (l *Ledger) Sequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sequence
}

// commit assigns the record's sequence, snapshots the aggregate, emits the
// record, and refreshes the pool gauges. Caller holds the write lock.
func (l *Ledger) commit(rec event.OperationRecord) {
	l.sequence++
	rec.Sequence = l.sequence
	rec.OpName = rec.Op.String()

	info := l.poolInfoLocked()
	rec.PoolTotalAfter = info.TotalAmount
	rec.StakerCount = info.StakerCount
	rec.TotalStakeCount = info.TotalStakeCount

	if l.recordChan != nil {
		select {
		case l.recordChan <- rec:
		default:
			if l.metrics != nil {
				l.metrics.RecordDrops.Inc()
			}
		}
	}

	if l.metrics != nil {
		l.metrics.OpSequence.Set(float64(l.sequence))
		l.metrics.PoolTotalAmount.Set(float64(info.TotalAmount))
		l.metrics.PoolStakers.Set(float64(info.StakerCount))
		l.metrics.PoolStakes.Set(float64(info.TotalStakeCount))
		l.metrics.TreasuryBalance.Set(float64(l.treasury.Available()))
	}
}

func (l *Ledger) reject(op string, err error) error {
	if l.metrics != nil {
		l.metrics.OpsRejected.WithLabelValues(op, rejectReason(err)).Inc()
	}
	l.logger.Debug().Str("op", op).Err(err).Msg("operation rejected")
	return err
}
