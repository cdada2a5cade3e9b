// Package audioprocessing implements the scoring endpoint: look up a stored
// audio record, resolve a playable URL for it, run the scoring engine, and
// persist the result.
package audioprocessing

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ai-storyteller/scoring-service/internal/coreengine/diffhighlighter"
	"ai-storyteller/scoring-service/internal/coreengine/scoringengine"
	"ai-storyteller/scoring-service/internal/coreengine/vendoradapters"
	"ai-storyteller/scoring-service/internal/datastore"
)

// ErrNoAudioLocation means a record carries neither an object key nor a
// direct file path.
var ErrNoAudioLocation = errors.New("no audio location found (missing s3Key and filePath)")

// AudioStore is the persistence surface the handlers need.
type AudioStore interface {
	GetAudio(ctx context.Context, id string) (*datastore.AudioRecord, error)
	SaveScoringResult(ctx context.Context, id string, transcript string, score float64) error
	ListAudios(ctx context.Context) ([]datastore.AudioRecord, error)
}

// LocationResolver turns an object key into a URL the transcription provider
// can fetch.
type LocationResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// Handler carries the injected collaborators for the audio endpoints.
type Handler struct {
	store       AudioStore
	locations   LocationResolver
	transcriber vendoradapters.TranscriptionAdapter
	enhancer    vendoradapters.EnhancementAdapter
	log         zerolog.Logger
}

// NewHandler wires the handler with its collaborators.
func NewHandler(
	store AudioStore,
	locations LocationResolver,
	transcriber vendoradapters.TranscriptionAdapter,
	enhancer vendoradapters.EnhancementAdapter,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		store:       store,
		locations:   locations,
		transcriber: transcriber,
		enhancer:    enhancer,
		log:         log.With().Str("component", "audioprocessing").Logger(),
	}
}

// ProcessAudioResponse is the wire shape of a scoring run. All fields are
// null when the record has no reference story.
type ProcessAudioResponse struct {
	Transcript         *string  `json:"transcript"`
	EnhancedTranscript *string  `json:"enhanced_transcript"`
	Score              *float64 `json:"score"`
}

// ProcessAudio handles GET /process-audio/:audio_id.
//
// The request walks Lookup -> ResolveLocation -> Score -> Persist -> Respond.
// A missing reference story is a soft condition: scoring is skipped, the
// record is left untouched and the response carries nulls with status 200.
func (h *Handler) ProcessAudio(c *gin.Context) {
	ctx := c.Request.Context()
	audioID := c.Param("audio_id")

	rec, err := h.store.GetAudio(ctx, audioID)
	if err != nil {
		if errors.Is(err, datastore.ErrAudioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
			return
		}
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("audio lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audio record"})
		return
	}

	audioFileURL, err := h.resolveLocation(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrNoAudioLocation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoAudioLocation.Error()})
			return
		}
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("audio location resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve audio location"})
		return
	}

	if rec.WholeStory == "" {
		// Nothing to score against. Not a request failure, but worth an
		// error-level log because the upload flow should always set a story.
		h.log.Error().Str("audio_id", audioID).Msg("audio record has no reference story, skipping scoring")
		c.JSON(http.StatusOK, ProcessAudioResponse{})
		return
	}

	scorer, err := scoringengine.NewScorer(ctx, h.transcriber, h.enhancer, rec.WholeStory, audioFileURL, scoringengine.DefaultLanguage, h.log)
	if err != nil {
		h.respondProviderError(c, audioID, err)
		return
	}

	transcript := scorer.TrueTranscript()
	enhanced := scorer.EnhancedTranscript()
	score := scorer.FinalScore()

	if diffs, perr := scorer.PunctuationAnalysis(); perr != nil {
		h.log.Warn().Err(perr).Str("audio_id", audioID).Msg("punctuation analysis unavailable")
	} else if len(diffs) > 0 {
		h.log.Info().Str("audio_id", audioID).Int("differences", len(diffs)).Msg("punctuation differences found")
	}

	if err := h.store.SaveScoringResult(ctx, audioID, transcript, score); err != nil {
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("persisting scoring result failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist scoring result"})
		return
	}

	h.log.Info().Str("audio_id", audioID).Float64("score", score).Msg("audio scored")
	c.JSON(http.StatusOK, ProcessAudioResponse{
		Transcript:         &transcript,
		EnhancedTranscript: &enhanced,
		Score:              &score,
	})
}

// resolveLocation picks the audio source: the object key when present
// (resolved through CDN or presigning), else the legacy direct path.
func (h *Handler) resolveLocation(ctx context.Context, rec *datastore.AudioRecord) (string, error) {
	switch {
	case rec.S3Key != "":
		return h.locations.ResolveURL(ctx, rec.S3Key)
	case rec.FilePath != "":
		return rec.FilePath, nil
	default:
		return "", ErrNoAudioLocation
	}
}

// respondProviderError maps adapter failures to 502: the request was fine,
// an upstream dependency was not.
func (h *Handler) respondProviderError(c *gin.Context, audioID string, err error) {
	var te *vendoradapters.TranscriptionError
	var ee *vendoradapters.EnhancementError
	switch {
	case errors.As(err, &te):
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("transcription provider failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transcription provider failed"})
	case errors.As(err, &ee):
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("enhancement provider failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transcript enhancement failed"})
	default:
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("scoring failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scoring failed"})
	}
}

// GetAudio handles GET /audios/:audio_id.
func (h *Handler) GetAudio(c *gin.Context) {
	rec, err := h.store.GetAudio(c.Request.Context(), c.Param("audio_id"))
	if err != nil {
		if errors.Is(err, datastore.ErrAudioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
			return
		}
		h.log.Error().Err(err).Msg("audio lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audio record"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListAudios handles GET /audios.
func (h *Handler) ListAudios(c *gin.Context) {
	recs, err := h.store.ListAudios(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("audio listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audio records"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// DiffResponse is the wire shape of the reading diff report.
type DiffResponse struct {
	Tokens                 []diffhighlighter.Token               `json:"tokens"`
	PunctuationDifferences []scoringengine.PunctuationDifference `json:"punctuation_differences"`
}

// GetDiff handles GET /audios/:audio_id/diff. It works entirely from the
// stored transcript and story; no external provider is called. A record that
// has not been scored yet cannot be diffed.
func (h *Handler) GetDiff(c *gin.Context) {
	audioID := c.Param("audio_id")

	rec, err := h.store.GetAudio(c.Request.Context(), audioID)
	if err != nil {
		if errors.Is(err, datastore.ErrAudioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
			return
		}
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("audio lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audio record"})
		return
	}
	if rec.Transcript == nil || rec.WholeStory == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio has not been scored yet"})
		return
	}

	diffs, err := scoringengine.AnalyzePunctuation(*rec.Transcript, rec.WholeStory, h.log)
	if err != nil {
		h.log.Error().Err(err).Str("audio_id", audioID).Msg("punctuation analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze punctuation"})
		return
	}

	c.JSON(http.StatusOK, DiffResponse{
		Tokens:                 diffhighlighter.Highlight(rec.WholeStory, *rec.Transcript),
		PunctuationDifferences: diffs,
	})
}
