package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
	"brandpost-bot/internal/submission"
)

// ErrDuplicate is returned when a submission with the same idempotency key
// was already enqueued.
var ErrDuplicate = errors.New("duplicate submission")

// Queue is the producer side of the durable publish queue. It rejects
// duplicates by idempotency key, checking an in-memory set of recently
// enqueued keys before touching the database.
type Queue struct {
	repo database.QueueRepository

	mu         sync.Mutex
	recentKeys map[string]struct{}
}

// New creates a publish queue over the given repository.
func New(repo database.QueueRepository) *Queue {
	return &Queue{
		repo:       repo,
		recentKeys: make(map[string]struct{}),
	}
}

// Enqueue adds a submission to the publish queue. The idempotency key is
// derived from the submitter, the sorted photo set, the caption, and the
// photo count, so resending the same post is rejected regardless of photo
// order.
func (q *Queue) Enqueue(ctx context.Context, sub submission.Submission) (*models.QueueEntry, error) {
	key := models.QueueKey(sub.SubmitterID, sub.FileIDs, sub.Caption)

	q.mu.Lock()
	if _, seen := q.recentKeys[key]; seen {
		q.mu.Unlock()
		return nil, ErrDuplicate
	}
	q.mu.Unlock()

	entry := &models.QueueEntry{
		Key:                key,
		SubmitterID:        sub.SubmitterID,
		ChatID:             sub.ChatID,
		MessageID:          sub.MessageID,
		FileIDs:            sub.FileIDs,
		FileCount:          len(sub.FileIDs),
		Caption:            sub.Caption,
		CorrectionTargetID: sub.CorrectionTargetID,
	}
	if err := q.repo.Enqueue(ctx, entry); err != nil {
		if errors.Is(err, database.ErrDuplicateEntry) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to enqueue submission: %w", err)
	}

	q.mu.Lock()
	q.recentKeys[key] = struct{}{}
	q.mu.Unlock()

	log.Printf("[Queue Entry:%s] Enqueued %d photo(s) from user %d.", entry.ID.Hex(), entry.FileCount, entry.SubmitterID)
	return entry, nil
}

// PendingCount returns the number of entries awaiting publication.
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	return q.repo.CountByStatus(ctx, models.QueueStatusPending)
}

// FailedCount returns the number of entries that failed to publish.
func (q *Queue) FailedCount(ctx context.Context) (int64, error) {
	return q.repo.CountByStatus(ctx, models.QueueStatusFailed)
}

// clearRecentKeys drops the in-memory duplicate bookkeeping. The consumer
// calls this whenever it observes the queue empty, bounding the set's
// growth without a second expiry mechanism.
func (q *Queue) clearRecentKeys() {
	q.mu.Lock()
	if len(q.recentKeys) > 0 {
		q.recentKeys = make(map[string]struct{})
	}
	q.mu.Unlock()
}
