package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
)

const (
	// DefaultPublishDelay is the pause between consecutive publications,
	// keeping the bot under Telegram's flood limits.
	DefaultPublishDelay = 3 * time.Second
	// DefaultIdleDelay is the pause before re-polling an empty queue.
	DefaultIdleDelay = 1 * time.Second
)

// Publisher publishes one queue entry to its destinations.
type Publisher interface {
	Publish(ctx context.Context, entry *models.QueueEntry) error
}

// Consumer drains the publish queue one entry at a time. A single consumer
// runs per process, so entries publish strictly in arrival order.
type Consumer struct {
	queue     *Queue
	repo      database.QueueRepository
	publisher Publisher

	publishDelay time.Duration
	idleDelay    time.Duration
}

// NewConsumer creates the queue consumer.
func NewConsumer(q *Queue, repo database.QueueRepository, publisher Publisher) *Consumer {
	return &Consumer{
		queue:        q,
		repo:         repo,
		publisher:    publisher,
		publishDelay: DefaultPublishDelay,
		idleDelay:    DefaultIdleDelay,
	}
}

// NewConsumerWithDelays creates a consumer with explicit delays, for tests.
func NewConsumerWithDelays(q *Queue, repo database.QueueRepository, publisher Publisher, publishDelay, idleDelay time.Duration) *Consumer {
	c := NewConsumer(q, repo, publisher)
	c.publishDelay = publishDelay
	c.idleDelay = idleDelay
	return c
}

// Run processes queue entries until the context is canceled. A failed
// publication marks its entry failed and the loop moves on; one bad post
// never blocks the queue.
func (c *Consumer) Run(ctx context.Context) {
	log.Println("[QueueConsumer] Started.")
	for {
		if ctx.Err() != nil {
			log.Println("[QueueConsumer] Stopped.")
			return
		}

		entry, err := c.repo.NextPending(ctx)
		if errors.Is(err, database.ErrQueueEmpty) {
			c.queue.clearRecentKeys()
			if !sleepCtx(ctx, c.idleDelay) {
				return
			}
			continue
		}
		if err != nil {
			log.Printf("[QueueConsumer] Failed to fetch next entry: %v", err)
			sentry.CaptureException(err)
			if !sleepCtx(ctx, c.idleDelay) {
				return
			}
			continue
		}

		c.process(ctx, entry)

		if !sleepCtx(ctx, c.publishDelay) {
			return
		}
	}
}

func (c *Consumer) process(ctx context.Context, entry *models.QueueEntry) {
	if err := c.repo.UpdateStatus(ctx, entry.ID, models.QueueStatusProcessing); err != nil {
		log.Printf("[QueueConsumer Entry:%s] Failed to mark processing: %v", entry.ID.Hex(), err)
		sentry.CaptureException(err)
		return
	}

	if err := c.publisher.Publish(ctx, entry); err != nil {
		log.Printf("[QueueConsumer Entry:%s] Publish failed: %v", entry.ID.Hex(), err)
		sentry.CaptureException(err)
		if statusErr := c.repo.UpdateStatus(ctx, entry.ID, models.QueueStatusFailed); statusErr != nil {
			log.Printf("[QueueConsumer Entry:%s] Failed to mark failed: %v", entry.ID.Hex(), statusErr)
			sentry.CaptureException(statusErr)
		}
		return
	}

	if err := c.repo.UpdateStatus(ctx, entry.ID, models.QueueStatusSent); err != nil {
		log.Printf("[QueueConsumer Entry:%s] Failed to mark sent: %v", entry.ID.Hex(), err)
		sentry.CaptureException(err)
	}
}

// sleepCtx waits for d or until the context is canceled. It returns false
// when the context ended the wait.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
