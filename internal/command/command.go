// Package command defines the typed mutation commands accepted by the pool
// and the parser that converts raw wire payloads into them.
package command

import "github.com/google/uuid"

// Command is a typed request to mutate the pool. Implementations carry the
// caller identity resolved from the wire payload.
type Command interface {
	CommandType() string
	CallerID() uuid.UUID
}

// Deposit asks the pool to lock Amount for LockPeriodDays on behalf of Caller.
type Deposit struct {
	Caller         uuid.UUID
	Amount         uint64
	LockPeriodDays uint32
}

func (c *Deposit) CommandType() string { return "Deposit" }
func (c *Deposit) CallerID() uuid.UUID { return c.Caller }

// Withdraw asks the pool to release the caller's stake at StakeIndex.
type Withdraw struct {
	Caller     uuid.UUID
	StakeIndex int
}

func (c *Withdraw) CommandType() string { return "Withdraw" }
func (c *Withdraw) CallerID() uuid.UUID { return c.Caller }
