package database

import (
	"context"
	"fmt"
	"time"

	"brandpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const correctionCollectionName = "correction_requests"

// MongoCorrectionRepository implements CorrectionRepository for MongoDB.
type MongoCorrectionRepository struct {
	collection *mongo.Collection
}

// NewMongoCorrectionRepository creates a new MongoDB correction repository.
func NewMongoCorrectionRepository(db *mongo.Database) *MongoCorrectionRepository {
	return &MongoCorrectionRepository{
		collection: db.Collection(correctionCollectionName),
	}
}

// Log records an in-flight correction request.
func (r *MongoCorrectionRepository) Log(ctx context.Context, req *models.CorrectionRequest) error {
	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to log correction request: %w", err)
	}
	return nil
}

// DeleteByMessageID removes the correction record tied to a submitter
// message once the corrected post has been republished.
func (r *MongoCorrectionRepository) DeleteByMessageID(ctx context.Context, messageID int) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"message_id": messageID}); err != nil {
		return fmt.Errorf("failed to delete correction request for message %d: %w", messageID, err)
	}
	return nil
}

// DeleteStale removes the submitter's correction records created before
// the cutoff.
func (r *MongoCorrectionRepository) DeleteStale(ctx context.Context, submitterID int64, before time.Time) error {
	filter := bson.M{
		"submitter_id": submitterID,
		"created_at":   bson.M{"$lt": before},
	}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to purge stale correction requests: %w", err)
	}
	return nil
}
