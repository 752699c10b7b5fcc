package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"stakepool/internal/event"
)

// OutboundPublisher publishes committed operation records to NATS for
// downstream consumers. Subjects follow the pattern:
// stake.pool.events.{op}
type OutboundPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan event.OperationRecord
}

func NewOutboundPublisher(js jetstream.JetStream, inputChan <-chan event.OperationRecord) *OutboundPublisher {
	return &OutboundPublisher{
		js:        js,
		inputChan: inputChan,
	}
}

// Run starts the outbound publisher loop.
func (op *OutboundPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case rec, ok := <-op.inputChan:
			if !ok {
				return nil
			}

			if err := op.publish(ctx, rec); err != nil {
				log.Printf("WARN: outbound publish failed seq=%d: %v", rec.Sequence, err)
				// Non-fatal: downstream consumers can query the audit log directly
			}
		}
	}
}

func (op *OutboundPublisher) publish(ctx context.Context, rec event.OperationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	subject := fmt.Sprintf("stake.pool.events.%s", rec.Op)
	_, err = op.js.Publish(ctx, subject, data)
	return err
}

// EnsureOutboundStream creates the outbound events stream.
func EnsureOutboundStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "STAKE_POOL_EVENTS",
		Subjects:  []string{"stake.pool.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create outbound stream: %w", err)
	}
	log.Println("INFO: ensured outbound stream STAKE_POOL_EVENTS")
	return nil
}
