package datastore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioRecord maps to a document in the audios collection.
//
// Records are created by the upload flow (a separate service); this service
// reads them and writes back Transcript and Score after a scoring run.
// S3Key is preferred over the legacy FilePath when both are present.
type AudioRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FilePath   string             `bson:"filePath,omitempty" json:"filePath,omitempty"`
	FileName   string             `bson:"fileName,omitempty" json:"fileName,omitempty"`
	S3Key      string             `bson:"s3Key,omitempty" json:"s3Key,omitempty"`
	StoryID    primitive.ObjectID `bson:"sid,omitempty" json:"sid,omitempty"`
	WholeStory string             `bson:"wholeStory,omitempty" json:"wholeStory,omitempty"`
	Transcript *string            `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Score      *float64           `bson:"score,omitempty" json:"score,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
