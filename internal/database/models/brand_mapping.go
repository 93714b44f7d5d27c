package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// BrandMapping maps a normalized input spelling to a canonical brand and
// its destinations. Read-only from the publish path.
type BrandMapping struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	InputName     string             `bson:"input_name"`     // normalized lower-case spelling
	CanonicalName string             `bson:"corrected_name"` // canonical brand name
	TargetGroups  []string           `bson:"target_groups"`  // first entry is the primary destination
	TargetTopic   string             `bson:"target_topic,omitempty"`
}

// Destination maps a destination group name to its chat id.
type Destination struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GroupName string             `bson:"group_name"`
	ChatID    int64              `bson:"chat_id"`
}

// Topic maps a (group, topic) pair to the forum thread id used for sends.
type Topic struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GroupName string             `bson:"group_name"`
	TopicName string             `bson:"topic_name"`
	ThreadID  int                `bson:"message_thread_id"`
}
