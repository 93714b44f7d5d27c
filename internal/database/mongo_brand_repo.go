package database

import (
	"context"
	"fmt"

	"brandpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	brandCollectionName       = "brands"
	destinationCollectionName = "destinations"
	topicCollectionName       = "topics"
)

// MongoBrandRepository implements BrandRepository for MongoDB. Brand
// mappings and the destination directory are maintained by operators, so
// this repository is read-only.
type MongoBrandRepository struct {
	brands       *mongo.Collection
	destinations *mongo.Collection
	topics       *mongo.Collection
}

// NewMongoBrandRepository creates a new MongoDB brand repository.
func NewMongoBrandRepository(db *mongo.Database) *MongoBrandRepository {
	return &MongoBrandRepository{
		brands:       db.Collection(brandCollectionName),
		destinations: db.Collection(destinationCollectionName),
		topics:       db.Collection(topicCollectionName),
	}
}

// FindByInput returns the mapping whose stored input name matches exactly.
func (r *MongoBrandRepository) FindByInput(ctx context.Context, inputName string) (*models.BrandMapping, error) {
	return r.findMapping(ctx, bson.M{"input_name": inputName})
}

// FindByCanonical returns the mapping for a canonical brand name.
func (r *MongoBrandRepository) FindByCanonical(ctx context.Context, canonicalName string) (*models.BrandMapping, error) {
	return r.findMapping(ctx, bson.M{"corrected_name": canonicalName})
}

// ListCanonicalNames returns the distinct canonical brand names known to
// the directory. The resolver fuzzy-matches against this list.
func (r *MongoBrandRepository) ListCanonicalNames(ctx context.Context) ([]string, error) {
	values, err := r.brands.Distinct(ctx, "corrected_name", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list canonical brand names: %w", err)
	}

	names := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return names, nil
}

// GetDestinationChatID resolves a destination group name to its chat id.
func (r *MongoBrandRepository) GetDestinationChatID(ctx context.Context, groupName string) (int64, error) {
	var dest models.Destination
	err := r.destinations.FindOne(ctx, bson.M{"group_name": groupName}).Decode(&dest)
	if err == mongo.ErrNoDocuments {
		return 0, ErrDestinationNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve destination %q: %w", groupName, err)
	}
	return dest.ChatID, nil
}

// GetTopicThreadID resolves a topic name within a group to its thread id.
func (r *MongoBrandRepository) GetTopicThreadID(ctx context.Context, groupName, topicName string) (int, error) {
	filter := bson.M{
		"group_name": groupName,
		"topic_name": topicName,
	}
	var topic models.Topic
	err := r.topics.FindOne(ctx, filter).Decode(&topic)
	if err == mongo.ErrNoDocuments {
		return 0, ErrTopicNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve topic %q in %q: %w", topicName, groupName, err)
	}
	return topic.ThreadID, nil
}

func (r *MongoBrandRepository) findMapping(ctx context.Context, filter bson.M) (*models.BrandMapping, error) {
	var mapping models.BrandMapping
	err := r.brands.FindOne(ctx, filter).Decode(&mapping)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find brand mapping: %w", err)
	}
	return &mapping, nil
}
