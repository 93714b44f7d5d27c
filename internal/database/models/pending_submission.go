package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingSubmission is a content-only submission waiting for its caption.
// It is created when an aggregation batch (or a single photo) completes
// without any caption, and consumed when a later text from the same
// submitter is matched against it.
type PendingSubmission struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	SubmitterID        int64              `bson:"submitter_id"`
	ChatID             int64              `bson:"chat_id"`
	BatchID            string             `bson:"batch_id"` // media group id, or a synthetic id for single photos
	MessageID          int                `bson:"message_id"`
	FileIDs            []string           `bson:"file_ids"`
	CorrectionTargetID int                `bson:"correction_target_id,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
}
