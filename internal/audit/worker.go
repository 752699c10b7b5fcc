package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"stakepool/internal/event"
	"stakepool/internal/observability"
)

// Worker drains the record channel and batch-writes to Postgres. It batches
// incoming records and flushes either when the batch is full or the flush
// timeout expires.
type Worker struct {
	writer       *Writer
	db           *sql.DB
	inputChan    <-chan event.OperationRecord
	batchSize    int
	flushTimeout time.Duration
	metrics      *observability.Metrics
}

func NewWorker(
	db *sql.DB,
	inputChan <-chan event.OperationRecord,
	batchSize int,
	flushTimeout time.Duration,
	metrics *observability.Metrics,
) *Worker {
	return &Worker{
		writer:       NewWriter(db),
		db:           db,
		inputChan:    inputChan,
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		metrics:      metrics,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled or the input
// channel is closed; remaining records are flushed on the way out.
func (aw *Worker) Run(ctx context.Context) error {
	batch := make([]event.OperationRecord, 0, aw.batchSize)

	timer := time.NewTimer(aw.flushTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				if err := aw.flush(context.Background(), batch); err != nil {
					log.Printf("ERROR: final audit flush failed: %v", err)
				}
			}
			return ctx.Err()

		case rec, ok := <-aw.inputChan:
			if !ok {
				if len(batch) > 0 {
					if err := aw.flush(context.Background(), batch); err != nil {
						log.Printf("ERROR: final audit flush failed: %v", err)
					}
				}
				return nil
			}

			batch = append(batch, rec)

			if len(batch) >= aw.batchSize {
				if err := aw.flushWithRetry(ctx, batch); err != nil {
					log.Printf("ERROR: audit batch flush failed after retries: %v", err)
				}
				batch = batch[:0]
				timer.Reset(aw.flushTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				if err := aw.flushWithRetry(ctx, batch); err != nil {
					log.Printf("ERROR: audit timeout flush failed after retries: %v", err)
				}
				batch = batch[:0]
			}
			timer.Reset(aw.flushTimeout)
		}
	}
}

// flushWithRetry attempts to flush with exponential backoff. The worker never
// drops records: it retries until the write succeeds or the context is
// cancelled, in which case a final flush runs on a background context.
func (aw *Worker) flushWithRetry(ctx context.Context, batch []event.OperationRecord) error {
	backoff := 100 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			log.Printf("WARN: audit retry attempt %d (backoff=%v, records=%d)",
				attempt, backoff, len(batch))
			select {
			case <-ctx.Done():
				finalErr := aw.flush(context.Background(), batch)
				if finalErr != nil {
					return fmt.Errorf("final flush on shutdown failed: %w", finalErr)
				}
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		err := aw.flush(ctx, batch)
		if err == nil {
			if attempt > 0 {
				log.Printf("INFO: audit flush succeeded after %d retries", attempt)
			}
			return nil
		}

		if aw.metrics != nil {
			aw.metrics.AuditErrors.WithLabelValues("retry").Inc()
		}
	}
}

func (aw *Worker) flush(ctx context.Context, batch []event.OperationRecord) error {
	start := time.Now()

	tx, err := aw.db.BeginTx(ctx, nil)
	if err != nil {
		if aw.metrics != nil {
			aw.metrics.AuditErrors.WithLabelValues("tx_begin").Inc()
		}
		return err
	}
	defer tx.Rollback()

	if err := aw.writer.WriteBatch(ctx, tx, batch); err != nil {
		if aw.metrics != nil {
			aw.metrics.AuditErrors.WithLabelValues("write").Inc()
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if aw.metrics != nil {
			aw.metrics.AuditErrors.WithLabelValues("tx_commit").Inc()
		}
		return err
	}

	if aw.metrics != nil {
		aw.metrics.AuditBatchDur.Observe(time.Since(start).Seconds())
		aw.metrics.AuditRowsWritten.Add(float64(len(batch)))
	}

	return nil
}
