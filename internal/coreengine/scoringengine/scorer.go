// Package scoringengine computes the reading score for one audio recording:
// it obtains the raw transcript and the LLM-enhanced transcript once, blends
// three word-error-rate measurements into a 0-100 score, and reports
// sentence-level punctuation differences against the story.
package scoringengine

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"ai-storyteller/scoring-service/internal/coreengine/metricscalculator"
	"ai-storyteller/scoring-service/internal/coreengine/vendoradapters"
)

// DefaultLanguage is the transcription locale used when none is given.
const DefaultLanguage = "en"

// enhancementSlackTokens is the always-allowed token count drift between the
// raw and enhanced transcripts before the enhancement is rejected.
const enhancementSlackTokens = 3

// Scorer holds the transcripts for one scoring run. Both transcripts are
// fetched eagerly at construction and cached; scoring methods never repeat
// a network call.
type Scorer struct {
	story        string
	audioFileURL string
	language     string

	trueTranscript     string
	enhancedTranscript string

	log zerolog.Logger
}

// NewScorer transcribes the audio at audioFileURL and enhances the result
// against story, caching both. language may be empty, defaulting to
// DefaultLanguage. Provider failures abort construction.
//
// The enhancement contract says the corrected transcript substitutes words in
// place without adding or removing any. That contract lives in a prompt, not
// in code, so it is validated here: when the enhanced transcript's token
// count drifts from the raw transcript's by more than
// max(enhancementSlackTokens, 10% of the raw count), the enhancement is
// discarded and the raw transcript stands in for it, which makes the blended
// error collapse to the raw WER.
func NewScorer(
	ctx context.Context,
	transcriber vendoradapters.TranscriptionAdapter,
	enhancer vendoradapters.EnhancementAdapter,
	story string,
	audioFileURL string,
	language string,
	log zerolog.Logger,
) (*Scorer, error) {
	if language == "" {
		language = DefaultLanguage
	}

	s := &Scorer{
		story:        story,
		audioFileURL: audioFileURL,
		language:     language,
		log:          log.With().Str("component", "scoringengine").Logger(),
	}

	trueTranscript, err := transcriber.Transcribe(ctx, audioFileURL, language)
	if err != nil {
		return nil, err
	}
	s.trueTranscript = trueTranscript

	enhanced, err := enhancer.Enhance(ctx, trueTranscript, story)
	if err != nil {
		return nil, err
	}
	s.enhancedTranscript = s.guardEnhancement(trueTranscript, enhanced)

	return s, nil
}

// guardEnhancement enforces the same-token-count contract on the enhanced
// transcript, falling back to the raw transcript when it is violated.
func (s *Scorer) guardEnhancement(raw, enhanced string) string {
	rawCount := len(strings.Fields(raw))
	enhCount := len(strings.Fields(enhanced))

	delta := rawCount - enhCount
	if delta < 0 {
		delta = -delta
	}
	tolerance := enhancementSlackTokens
	if t := rawCount / 10; t > tolerance {
		tolerance = t
	}

	if delta > tolerance {
		s.log.Warn().
			Int("raw_tokens", rawCount).
			Int("enhanced_tokens", enhCount).
			Int("tolerance", tolerance).
			Msg("enhanced transcript violates token-count contract, discarding enhancement")
		return raw
	}
	return enhanced
}

// TrueTranscript returns the cached raw provider transcript.
func (s *Scorer) TrueTranscript() string { return s.trueTranscript }

// EnhancedTranscript returns the cached enhanced transcript. It equals the
// raw transcript when the enhancement was discarded by the token-count guard.
func (s *Scorer) EnhancedTranscript() string { return s.enhancedTranscript }

// WER returns the blended word error rate:
//
//	wer1 = WER(story, trueTranscript)      raw ASR error against ground truth
//	wer2 = WER(story, enhancedTranscript)  corrected error against ground truth
//	wer3 = WER(trueTranscript, enhanced)   how much the enhancement changed
//
//	blend = (1-wer3)*wer1 + wer3*wer2
//
// A low wer3 means the enhancement barely touched the transcript, so the raw
// error dominates; a heavily corrected transcript shifts the weight to wer2.
func (s *Scorer) WER() float64 {
	wer1, err := metricscalculator.CalculateWER(s.story, s.trueTranscript)
	if err != nil {
		s.log.Warn().Err(err).Msg("wer1 not normalizable")
	}
	wer2, err := metricscalculator.CalculateWER(s.story, s.enhancedTranscript)
	if err != nil {
		s.log.Warn().Err(err).Msg("wer2 not normalizable")
	}
	wer3, err := metricscalculator.CalculateWER(s.trueTranscript, s.enhancedTranscript)
	if err != nil {
		s.log.Warn().Err(err).Msg("wer3 not normalizable")
	}

	return metricscalculator.BlendWER(wer1, wer2, wer3)
}

// FinalScore maps the blended error to a 0-100 similarity score. WER can
// exceed 1 when the hypothesis is much longer than the reference, so the raw
// value 100*(1-WER) is clamped into [0, 100].
func (s *Scorer) FinalScore() float64 {
	score := 100 * (1 - s.WER())
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
