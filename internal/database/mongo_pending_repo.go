package database

import (
	"context"
	"fmt"
	"time"

	"brandpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pendingCollectionName = "pending_submissions"

// MongoPendingRepository implements PendingRepository for MongoDB.
type MongoPendingRepository struct {
	collection *mongo.Collection
}

// NewMongoPendingRepository creates a new MongoDB pending-submission repository.
func NewMongoPendingRepository(db *mongo.Database) *MongoPendingRepository {
	return &MongoPendingRepository{
		collection: db.Collection(pendingCollectionName),
	}
}

// Upsert stores a pending submission keyed by (submitter, batch id).
// If a record for the batch already exists the file id sets are merged,
// so a duplicate part delivery never creates a second record.
func (r *MongoPendingRepository) Upsert(ctx context.Context, pending *models.PendingSubmission) error {
	filter := bson.M{
		"submitter_id": pending.SubmitterID,
		"batch_id":     pending.BatchID,
	}

	var existing models.PendingSubmission
	err := r.collection.FindOne(ctx, filter).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		pending.ID = primitive.NewObjectID()
		pending.CreatedAt = time.Now()
		if _, err := r.collection.InsertOne(ctx, pending); err != nil {
			return fmt.Errorf("failed to insert pending submission: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up pending submission: %w", err)
	}

	merged := mergeFileIDs(existing.FileIDs, pending.FileIDs)
	update := bson.M{"$set": bson.M{
		"file_ids":   merged,
		"message_id": pending.MessageID,
	}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": existing.ID}, update); err != nil {
		return fmt.Errorf("failed to merge pending submission: %w", err)
	}
	return nil
}

// FindByCorrectionTarget returns the submitter's pending record carrying
// the given correction-target id.
func (r *MongoPendingRepository) FindByCorrectionTarget(ctx context.Context, submitterID int64, targetID int) (*models.PendingSubmission, error) {
	filter := bson.M{
		"submitter_id":         submitterID,
		"correction_target_id": targetID,
	}
	return r.findOne(ctx, filter, nil)
}

// FindByBatchID returns the submitter's pending record for a batch id.
func (r *MongoPendingRepository) FindByBatchID(ctx context.Context, submitterID int64, batchID string) (*models.PendingSubmission, error) {
	filter := bson.M{
		"submitter_id": submitterID,
		"batch_id":     batchID,
	}
	return r.findOne(ctx, filter, nil)
}

// FindOldest returns the submitter's earliest-created pending record.
// A submitter who sends several photo batches before typing any caption
// expects captions applied in send order.
func (r *MongoPendingRepository) FindOldest(ctx context.Context, submitterID int64) (*models.PendingSubmission, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findOne(ctx, bson.M{"submitter_id": submitterID}, opts)
}

// Delete removes the record for a batch id so it cannot be matched twice.
func (r *MongoPendingRepository) Delete(ctx context.Context, submitterID int64, batchID string) error {
	filter := bson.M{
		"submitter_id": submitterID,
		"batch_id":     batchID,
	}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete pending submission for batch %s: %w", batchID, err)
	}
	return nil
}

// DeleteStale removes the submitter's records created before the cutoff.
func (r *MongoPendingRepository) DeleteStale(ctx context.Context, submitterID int64, before time.Time) error {
	filter := bson.M{
		"submitter_id": submitterID,
		"created_at":   bson.M{"$lt": before},
	}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to purge stale pending submissions: %w", err)
	}
	return nil
}

func (r *MongoPendingRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.PendingSubmission, error) {
	var pending models.PendingSubmission
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&pending)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&pending)
	}
	if err == mongo.ErrNoDocuments {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending submission: %w", err)
	}
	return &pending, nil
}

// mergeFileIDs unions two file id lists preserving first-seen order.
func mergeFileIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged
}
