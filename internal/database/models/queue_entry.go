package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Queue entry statuses. Transitions are monotone:
// pending -> processing -> sent|failed. A failed entry is terminal and is
// never retried automatically.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusSent       = "sent"
	QueueStatusFailed     = "failed"
)

// QueueEntry is one durable FIFO record of the publish queue.
type QueueEntry struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Key                string             `bson:"key"` // idempotency key, see QueueKey
	SubmitterID        int64              `bson:"submitter_id"`
	ChatID             int64              `bson:"chat_id"`
	MessageID          int                `bson:"message_id"`
	FileIDs            []string           `bson:"file_ids"`
	FileCount          int                `bson:"file_count"`
	Caption            string             `bson:"caption,omitempty"`
	CorrectionTargetID int                `bson:"correction_target_id,omitempty"`
	Status             string             `bson:"status"`
	EnqueuedAt         time.Time          `bson:"enqueued_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

// QueueKey computes the idempotency key for a submission: submitter id,
// the sorted item-id list, the caption, and the item count. Two submissions
// with the same key are the same post and must not be queued twice.
func QueueKey(submitterID int64, fileIDs []string, caption string) string {
	sorted := make([]string, len(fileIDs))
	copy(sorted, fileIDs)
	sort.Strings(sorted)
	return fmt.Sprintf("%d|%s|%s|%d", submitterID, strings.Join(sorted, ","), caption, len(sorted))
}
