package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CorrectionRequest tracks one in-flight correction while the republish
// protocol runs. Completed requests are removed; stale ones are purged
// before each republish attempt.
type CorrectionRequest struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	SubmitterID        int64              `bson:"submitter_id"`
	BotName            string             `bson:"bot_name"`
	MessageID          int                `bson:"message_id"`
	Brand              string             `bson:"brand"`
	FileIDs            []string           `bson:"file_ids"`
	Caption            string             `bson:"caption"`
	CorrectionTargetID int                `bson:"correction_target_id,omitempty"`
	PrimaryMessageID   int                `bson:"primary_message_id"`
	CreatedAt          time.Time          `bson:"created_at"`
}
