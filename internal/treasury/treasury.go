package treasury

import (
	"errors"
	"sync"
)

// ErrInsufficientFunds is returned when a debit exceeds the available balance.
var ErrInsufficientFunds = errors.New("treasury: insufficient funds")

// ErrTransferRejected is returned when the settlement side refuses a credit.
var ErrTransferRejected = errors.New("treasury: transfer rejected")

// Treasury is the boundary the pool ledger settles against. In production
// this would be an external ledger transfer; here it is a single mutable
// balance counter, but the error surface is kept so callers must handle
// transfer failure on both legs.
type Treasury interface {
	// Debit removes amount from the available balance.
	Debit(amount uint64) error
	// Credit returns amount to the available balance.
	Credit(amount uint64) error
	// Available reports the current balance.
	Available() uint64
}

// Simulated holds the balance in memory. Safe for concurrent use.
type Simulated struct {
	mu      sync.Mutex
	balance uint64
}

// NewSimulated seeds the treasury with an opening balance.
func NewSimulated(opening uint64) *Simulated {
	return &Simulated{balance: opening}
}

func (s *Simulated) Debit(amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.balance {
		return ErrInsufficientFunds
	}
	s.balance -= amount
	return nil
}

func (s *Simulated) Credit(amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance += amount
	return nil
}

func (s *Simulated) Available() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}
