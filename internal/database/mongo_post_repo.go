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

const postCollectionName = "posts"

// MongoPostRepository implements PostRepository for MongoDB.
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoDB published-post repository.
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection(postCollectionName),
	}
}

// Insert stores a new published post.
func (r *MongoPostRepository) Insert(ctx context.Context, post *models.PublishedPost) error {
	post.ID = primitive.NewObjectID()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert published post: %w", err)
	}
	return nil
}

// FindByCorrectionTarget locates a post whose submitter-side or primary
// message id equals the correction-target id.
func (r *MongoPostRepository) FindByCorrectionTarget(ctx context.Context, targetID int) (*models.PublishedPost, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"message_id": targetID},
			{"primary_message_id": targetID},
		},
		"primary_message_id": bson.M{"$ne": 0},
	}
	return r.findLatest(ctx, filter)
}

// FindByBrandAndPrice locates the latest post for a brand whose current or
// original price matches.
func (r *MongoPostRepository) FindByBrandAndPrice(ctx context.Context, brand string, price float64) (*models.PublishedPost, error) {
	filter := bson.M{
		"brand": brand,
		"$or": []bson.M{
			{"price": price},
			{"original_price": price},
		},
		"primary_message_id": bson.M{"$ne": 0},
	}
	return r.findLatest(ctx, filter)
}

// FindByFileID locates the latest post for a brand containing the file id,
// either as an original upload or a destination-assigned watermarked id.
func (r *MongoPostRepository) FindByFileID(ctx context.Context, fileID string, brand string) (*models.PublishedPost, error) {
	filter := bson.M{
		"brand": brand,
		"$or": []bson.M{
			{"file_ids": fileID},
			{"watermarked_file_ids": fileID},
		},
		"primary_message_id": bson.M{"$ne": 0},
	}
	return r.findLatest(ctx, filter)
}

// FindByBrandAndFiles locates the latest post with exactly this item set for
// the brand; price, when non-nil, must match the current or original price.
// Photo sets compare as sets throughout (queue keys, the publisher's
// same-set check), so the match ignores arrival order.
func (r *MongoPostRepository) FindByBrandAndFiles(ctx context.Context, brand string, fileIDs []string, price *float64) (*models.PublishedPost, error) {
	set := fileSetFilter(fileIDs)
	filter := bson.M{
		"brand": brand,
		"$or": []bson.M{
			{"file_ids": set},
			{"watermarked_file_ids": set},
		},
		"primary_message_id": bson.M{"$ne": 0},
	}
	if price != nil {
		filter = bson.M{
			"$and": []bson.M{
				filter,
				{"$or": []bson.M{
					{"price": *price},
					{"original_price": *price},
				}},
			},
		}
	}
	return r.findLatest(ctx, filter)
}

// UpdatePrice replaces the displayed price, percent annotation, and
// caption of the post addressed by its primary message id.
func (r *MongoPostRepository) UpdatePrice(ctx context.Context, primaryMessageID int, price float64, percent, caption string) error {
	update := bson.M{"$set": bson.M{
		"price":      price,
		"percent":    percent,
		"caption":    caption,
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"primary_message_id": primaryMessageID}, update)
	if err != nil {
		return fmt.Errorf("failed to update post price: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ReplaceIdentifiers atomically replaces the primary message id, buyer
// message refs, price facts, and caption of one post. Issued as a single
// update so a concurrent reader never observes a half-replaced identifier
// set.
func (r *MongoPostRepository) ReplaceIdentifiers(ctx context.Context, id primitive.ObjectID, primaryMessageID int, buyers []models.BuyerMessageRef, price float64, percent, caption string) error {
	update := bson.M{"$set": bson.M{
		"primary_message_id": primaryMessageID,
		"buyer_messages":     buyers,
		"price":              price,
		"percent":            percent,
		"caption":            caption,
		"updated_at":         time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to replace post identifiers for %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// fileSetFilter matches an array field holding exactly these ids in any
// order. Plain array equality in Mongo is positional and would miss a
// resubmission whose photos arrived in a different order.
func fileSetFilter(fileIDs []string) bson.M {
	return bson.M{"$all": fileIDs, "$size": len(fileIDs)}
}

func (r *MongoPostRepository) findLatest(ctx context.Context, filter bson.M) (*models.PublishedPost, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var post models.PublishedPost
	err := r.collection.FindOne(ctx, filter, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find published post: %w", err)
	}
	return &post, nil
}
