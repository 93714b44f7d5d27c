package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuyerMessageRef records the message a post produced in one buyer group.
type BuyerMessageRef struct {
	GroupName string `bson:"group_name"`
	ChatID    int64  `bson:"chat_id"`
	MessageID int    `bson:"message_id"`
}

// PublishedPost is the durable record of one successfully published
// submission. The republish protocol mutates it in place (message ids and
// price facts are replaced); the logical post survives its external
// message identifiers.
type PublishedPost struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	BotName            string             `bson:"bot_name"`
	SubmitterID        int64              `bson:"submitter_id"`
	MessageID          int                `bson:"message_id"` // submitter-side message id
	Brand              string             `bson:"brand"`
	Caption            string             `bson:"caption"` // caption as displayed at the primary destination
	Price              float64            `bson:"price"`          // currently displayed price
	OriginalPrice      float64            `bson:"original_price"` // basis for republish adjustments
	Currency           string             `bson:"currency,omitempty"`
	Percent            string             `bson:"percent,omitempty"` // annotation, e.g. "+5%"
	Sizes              string             `bson:"sizes,omitempty"`
	FileIDs            []string           `bson:"file_ids"`
	WatermarkedFileIDs []string           `bson:"watermarked_file_ids,omitempty"` // destination-assigned ids of re-uploaded photos
	PrimaryGroupName   string             `bson:"primary_group_name"`
	PrimaryChatID      int64              `bson:"primary_chat_id"`
	PrimaryMessageID   int                `bson:"primary_message_id"`
	TopicName          string             `bson:"topic_name,omitempty"`
	BuyerMessages      []BuyerMessageRef  `bson:"buyer_messages,omitempty"`
	CorrectionSourceID int                `bson:"correction_source_id,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}
