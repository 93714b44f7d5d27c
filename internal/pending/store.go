package pending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
	"brandpost-bot/internal/submission"
)

// DefaultStaleAfter is how long a content-only submission waits for its
// caption before it is discarded.
const DefaultStaleAfter = 1 * time.Hour

// ErrNoMatch is returned by Match when the submitter has no pending
// submission a caption could attach to.
var ErrNoMatch = errors.New("no pending submission to match")

// Store keeps content-only submissions until their caption arrives.
type Store struct {
	repo       database.PendingRepository
	staleAfter time.Duration
}

// NewStore creates a pending store over the given repository.
func NewStore(repo database.PendingRepository) *Store {
	return &Store{repo: repo, staleAfter: DefaultStaleAfter}
}

// NewStoreWithStaleness creates a store with an explicit staleness window,
// for tests.
func NewStoreWithStaleness(repo database.PendingRepository, staleAfter time.Duration) *Store {
	return &Store{repo: repo, staleAfter: staleAfter}
}

// Put records a content-only submission. Parts of one batch merge into a
// single record keyed by (submitter, batch id).
func (s *Store) Put(ctx context.Context, sub submission.Submission) error {
	rec := &models.PendingSubmission{
		SubmitterID:        sub.SubmitterID,
		ChatID:             sub.ChatID,
		BatchID:            batchID(sub),
		MessageID:          sub.MessageID,
		FileIDs:            sub.FileIDs,
		CorrectionTargetID: sub.CorrectionTargetID,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to store pending submission: %w", err)
	}
	return nil
}

// Match finds the submitter's pending submission a caption should attach
// to. A correction-target id takes priority, then the caption's own batch
// id, then the submitter's oldest record. Stale records are purged first
// so a forgotten batch never swallows a fresh caption.
func (s *Store) Match(ctx context.Context, submitterID int64, groupID string, correctionTargetID int) (*models.PendingSubmission, error) {
	if err := s.repo.DeleteStale(ctx, submitterID, time.Now().Add(-s.staleAfter)); err != nil {
		log.Printf("[PendingStore User:%d] Failed to purge stale submissions: %v", submitterID, err)
	}

	if correctionTargetID != 0 {
		rec, err := s.repo.FindByCorrectionTarget(ctx, submitterID, correctionTargetID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, database.ErrPendingNotFound) {
			return nil, err
		}
	}

	if groupID != "" {
		rec, err := s.repo.FindByBatchID(ctx, submitterID, groupID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, database.ErrPendingNotFound) {
			return nil, err
		}
	}

	rec, err := s.repo.FindOldest(ctx, submitterID)
	if errors.Is(err, database.ErrPendingNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Consume removes a matched record so it cannot attach to a second caption.
func (s *Store) Consume(ctx context.Context, rec *models.PendingSubmission) error {
	return s.repo.Delete(ctx, rec.SubmitterID, rec.BatchID)
}

// batchID derives the storage key for a submission's batch. Single photos
// have no media group id, so the message id stands in.
func batchID(sub submission.Submission) string {
	if sub.GroupID != "" {
		return sub.GroupID
	}
	return fmt.Sprintf("msg-%d", sub.MessageID)
}
