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

const queueCollectionName = "post_queue"

// MongoQueueRepository implements QueueRepository for MongoDB.
type MongoQueueRepository struct {
	collection *mongo.Collection
}

// NewMongoQueueRepository creates a new MongoDB queue repository.
func NewMongoQueueRepository(db *mongo.Database) *MongoQueueRepository {
	return &MongoQueueRepository{
		collection: db.Collection(queueCollectionName),
	}
}

// Enqueue inserts a new pending entry, rejecting duplicates by idempotency key.
func (r *MongoQueueRepository) Enqueue(ctx context.Context, entry *models.QueueEntry) error {
	exists, err := r.ExistsByKey(ctx, entry.Key)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEntry
	}

	entry.ID = primitive.NewObjectID()
	entry.Status = models.QueueStatusPending
	now := time.Now()
	entry.EnqueuedAt = now
	entry.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}
	return nil
}

// ExistsByKey reports whether an entry with the given key exists in any status.
func (r *MongoQueueRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check queue key: %w", err)
	}
	return true, nil
}

// NextPending returns the oldest pending entry, preserving arrival order.
func (r *MongoQueueRepository) NextPending(ctx context.Context) (*models.QueueEntry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "enqueued_at", Value: 1}})

	var entry models.QueueEntry
	err := r.collection.FindOne(ctx, bson.M{"status": models.QueueStatusPending}, opts).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find next pending entry: %w", err)
	}
	return &entry, nil
}

// UpdateStatus advances the status of one entry.
func (r *MongoQueueRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update queue status for %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("queue entry %s not found for status update", id.Hex())
	}
	return nil
}

// CountByStatus returns the number of entries in the given status.
func (r *MongoQueueRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}
