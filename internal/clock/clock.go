package clock

import (
	"sync/atomic"
	"time"
)

// Clock exposes the current time in whole seconds since the Unix epoch.
// The pool ledger never reads the wall clock directly — all time comes
// through this interface so lock-expiry logic is testable.
type Clock interface {
	NowSeconds() uint64
}

// System reads the platform time source.
type System struct{}

func NewSystem() System { return System{} }

func (System) NowSeconds() uint64 {
	return uint64(time.Now().Unix())
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	now atomic.Uint64
}

func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

func (m *Manual) NowSeconds() uint64 { return m.now.Load() }

// Set moves the clock to an absolute second.
func (m *Manual) Set(seconds uint64) { m.now.Store(seconds) }

// Advance moves the clock forward by delta seconds.
func (m *Manual) Advance(delta uint64) { m.now.Add(delta) }
