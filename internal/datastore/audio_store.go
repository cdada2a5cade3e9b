package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAudioNotFound is returned when no audio document exists for an id.
// A malformed id is reported the same way: from the caller's point of view
// there is no record behind it either way.
var ErrAudioNotFound = errors.New("audio record not found")

// AudioStore provides access to the audios collection.
type AudioStore struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

// NewAudioStore creates an AudioStore over the given collection.
func NewAudioStore(db *mongo.Database, collection string, log zerolog.Logger) *AudioStore {
	return &AudioStore{
		coll: db.Collection(collection),
		log:  log.With().Str("component", "datastore").Logger(),
	}
}

// GetAudio fetches one audio record by its hex object id.
func (s *AudioStore) GetAudio(ctx context.Context, id string) (*AudioRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAudioNotFound
	}

	var rec AudioRecord
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAudioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch audio record %s: %w", id, err)
	}
	return &rec, nil
}

// SaveScoringResult writes transcript and score onto the record in a single
// update, so a concurrent run for the same id can never leave the two fields
// from different runs interleaved.
func (s *AudioStore) SaveScoringResult(ctx context.Context, id string, transcript string, score float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrAudioNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"transcript": transcript,
			"score":      score,
		},
	})
	if err != nil {
		return fmt.Errorf("save scoring result for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrAudioNotFound
	}

	s.log.Debug().Str("audio_id", id).Float64("score", score).Msg("scoring result saved")
	return nil
}

// ListAudios returns every audio record in the collection.
func (s *AudioStore) ListAudios(ctx context.Context) ([]AudioRecord, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list audio records: %w", err)
	}
	defer cur.Close(ctx)

	var recs []AudioRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode audio records: %w", err)
	}
	return recs, nil
}
