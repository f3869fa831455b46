package services

import (
	"context"
	"log"
	"time"

	"github.com/chatlyhq/chatly/db"
)

// Publisher delivers an event payload to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// OutboxDispatcher drains the outbox: events committed by the send
// transaction are published to their channel and stamped. A publish failure
// leaves the row unpublished, so the next tick retries it (at-least-once;
// subscribers tolerate duplicates).
type OutboxDispatcher struct {
	outboxRepo db.OutboxRepository
	publisher  Publisher
	Interval   time.Duration
	BatchSize  int
}

func NewOutboxDispatcher(outboxRepo db.OutboxRepository, publisher Publisher) *OutboxDispatcher {
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		Interval:   200 * time.Millisecond,
		BatchSize:  100,
	}
}

// Run polls until the context is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Drain(ctx); err != nil {
				log.Printf("outbox drain error: %v", err)
			}
		}
	}
}

// Drain publishes one batch of unpublished events.
func (d *OutboxDispatcher) Drain(ctx context.Context) error {
	events, err := d.outboxRepo.FetchUnpublished(d.BatchSize)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := d.publisher.Publish(ctx, event.Channel, event.Payload); err != nil {
			log.Printf("publish to %s failed: %v", event.Channel, err)
			if markErr := d.outboxRepo.MarkFailed(event.ID); markErr != nil {
				log.Printf("could not record failed attempt: %v", markErr)
			}
			continue
		}
		if err := d.outboxRepo.MarkPublished(event.ID); err != nil {
			// the event will be re-published next tick; subscribers
			// must treat the channel as at-least-once
			log.Printf("could not mark event published: %v", err)
		}
	}
	return nil
}
