package database

import (
	"context"
	"time"

	"brandpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QueueRepository defines the durable publish queue operations.
type QueueRepository interface {
	// Enqueue inserts a new pending entry. It returns ErrDuplicateEntry if
	// an entry with the same idempotency key already exists in any status.
	Enqueue(ctx context.Context, entry *models.QueueEntry) error
	// ExistsByKey reports whether an entry with the given key exists.
	ExistsByKey(ctx context.Context, key string) (bool, error)
	// NextPending returns the oldest entry with status pending, or ErrQueueEmpty.
	NextPending(ctx context.Context) (*models.QueueEntry, error)
	// UpdateStatus advances the status of one entry.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// CountByStatus returns the number of entries in the given status.
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// PendingRepository stores content-only submissions awaiting a caption.
type PendingRepository interface {
	// Upsert stores a pending submission keyed by (submitter, batch id),
	// merging file id sets if a record for the batch already exists.
	Upsert(ctx context.Context, pending *models.PendingSubmission) error
	// FindByCorrectionTarget returns the submitter's pending record carrying
	// the given correction-target id, or ErrPendingNotFound.
	FindByCorrectionTarget(ctx context.Context, submitterID int64, targetID int) (*models.PendingSubmission, error)
	// FindByBatchID returns the submitter's pending record for a batch id,
	// or ErrPendingNotFound.
	FindByBatchID(ctx context.Context, submitterID int64, batchID string) (*models.PendingSubmission, error)
	// FindOldest returns the submitter's earliest-created pending record,
	// or ErrPendingNotFound.
	FindOldest(ctx context.Context, submitterID int64) (*models.PendingSubmission, error)
	// Delete removes the record for a batch id so it cannot match twice.
	Delete(ctx context.Context, submitterID int64, batchID string) error
	// DeleteStale removes the submitter's records created before the cutoff.
	DeleteStale(ctx context.Context, submitterID int64, before time.Time) error
}

// PostRepository stores published posts and supports the duplicate and
// correction lookups of the publish path.
type PostRepository interface {
	Insert(ctx context.Context, post *models.PublishedPost) error
	// FindByCorrectionTarget locates a post whose submitter-side or primary
	// message id equals the correction-target id.
	FindByCorrectionTarget(ctx context.Context, targetID int) (*models.PublishedPost, error)
	// FindByBrandAndPrice locates the latest post for a brand whose current
	// or original price matches.
	FindByBrandAndPrice(ctx context.Context, brand string, price float64) (*models.PublishedPost, error)
	// FindByFileID locates the latest post for a brand containing the file id
	// (original or watermarked).
	FindByFileID(ctx context.Context, fileID string, brand string) (*models.PublishedPost, error)
	// FindByBrandAndFiles locates the latest post with exactly this item set
	// for the brand; price, when non-nil, must match current or original.
	FindByBrandAndFiles(ctx context.Context, brand string, fileIDs []string, price *float64) (*models.PublishedPost, error)
	// UpdatePrice replaces the displayed price, percent annotation, and
	// caption of the post addressed by its primary message id.
	UpdatePrice(ctx context.Context, primaryMessageID int, price float64, percent, caption string) error
	// ReplaceIdentifiers atomically replaces the primary message id, buyer
	// message refs, price facts, and caption of one post.
	ReplaceIdentifiers(ctx context.Context, id primitive.ObjectID, primaryMessageID int, buyers []models.BuyerMessageRef, price float64, percent, caption string) error
}

// BrandRepository provides read access to brand mappings and the
// destination directory.
type BrandRepository interface {
	FindByInput(ctx context.Context, inputName string) (*models.BrandMapping, error)
	FindByCanonical(ctx context.Context, canonicalName string) (*models.BrandMapping, error)
	ListCanonicalNames(ctx context.Context) ([]string, error)
	GetDestinationChatID(ctx context.Context, groupName string) (int64, error)
	GetTopicThreadID(ctx context.Context, groupName, topicName string) (int, error)
}

// CorrectionRepository tracks in-flight correction requests.
type CorrectionRepository interface {
	Log(ctx context.Context, req *models.CorrectionRequest) error
	DeleteByMessageID(ctx context.Context, messageID int) error
	DeleteStale(ctx context.Context, submitterID int64, before time.Time) error
}

// UserActionLogger defines the interface for logging user actions.
type UserActionLogger interface {
	LogUserAction(userID int64, action string, details interface{}) error
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error
}
