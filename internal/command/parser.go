package command

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// RawCommand is a wire payload plus the command type string extracted from
// the transport (the final NATS subject token or an HTTP route).
type RawCommand struct {
	Data []byte
}

// ParseRawCommand converts a RawCommand into a typed Command. The transport
// shell validates and parses before anything reaches the ledger.
func ParseRawCommand(raw RawCommand, commandType string) (Command, error) {
	switch commandType {
	case "Deposit":
		return parseDeposit(raw.Data)
	case "Withdraw":
		return parseWithdraw(raw.Data)
	default:
		return nil, fmt.Errorf("unknown command type: %s", commandType)
	}
}

// --- JSON wire formats ---
// Field names use snake_case to match upstream producers.

type depositJSON struct {
	CallerID       string `json:"caller_id"`
	Amount         uint64 `json:"amount"`
	LockPeriodDays uint32 `json:"lock_period_days"`
}

func parseDeposit(data []byte) (*Deposit, error) {
	var j depositJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Deposit: %w", err)
	}
	caller, err := uuid.Parse(j.CallerID)
	if err != nil {
		return nil, fmt.Errorf("parse caller_id: %w", err)
	}
	return &Deposit{
		Caller:         caller,
		Amount:         j.Amount,
		LockPeriodDays: j.LockPeriodDays,
	}, nil
}

type withdrawJSON struct {
	CallerID   string `json:"caller_id"`
	StakeIndex int    `json:"stake_index"`
}

func parseWithdraw(data []byte) (*Withdraw, error) {
	var j withdrawJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Withdraw: %w", err)
	}
	caller, err := uuid.Parse(j.CallerID)
	if err != nil {
		return nil, fmt.Errorf("parse caller_id: %w", err)
	}
	return &Withdraw{
		Caller:     caller,
		StakeIndex: j.StakeIndex,
	}, nil
}
