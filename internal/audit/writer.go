// Package audit persists committed operation records to Postgres. The audit
// trail is observability only: the ledger never reads it back.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stakepool/internal/event"
)

// Writer writes operation records to audit.operations using multi-row
// INSERT. Writes are idempotent on sequence.
type Writer struct {
	db *sql.DB
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// EnsureSchema creates the audit schema and table if they don't exist.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE SCHEMA IF NOT EXISTS audit;
CREATE TABLE IF NOT EXISTS audit.operations (
	sequence          BIGINT PRIMARY KEY,
	op                TEXT NOT NULL,
	caller_id         UUID NOT NULL,
	stake_id          UUID NOT NULL,
	amount            BIGINT NOT NULL,
	fee               BIGINT NOT NULL,
	lock_period_days  INT NOT NULL,
	account_id        TEXT NOT NULL,
	pool_total_after  BIGINT NOT NULL,
	staker_count      INT NOT NULL,
	total_stake_count INT NOT NULL,
	ts                BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS operations_caller_idx ON audit.operations (caller_id);
`
	if _, err := w.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// WriteBatch writes a batch of records inside the given transaction.
func (w *Writer) WriteBatch(ctx context.Context, tx *sql.Tx, records []event.OperationRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO audit.operations
		(sequence, op, caller_id, stake_id, amount, fee, lock_period_days, account_id, pool_total_after, staker_count, total_stake_count, ts)
		VALUES `

	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*12)

	for i, r := range records {
		base := i * 12
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12,
		))
		args = append(args,
			int64(r.Sequence), r.Op.String(), r.Caller, r.StakeID,
			int64(r.Amount), int64(r.Fee), int32(r.LockPeriodDays), r.AccountID,
			int64(r.PoolTotalAfter), int32(r.StakerCount), int32(r.TotalStakeCount),
			int64(r.Timestamp),
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (sequence) DO NOTHING" // Idempotent writes

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
