// Package vendoradapters wraps the external SaaS providers the scoring
// engine depends on: speech-to-text transcription and LLM transcript
// enhancement. Providers are treated as black boxes with a simple
// request/response contract; retries and resilience policy, if any, belong
// inside the adapter, never in the scorer.
package vendoradapters

import "context"

// TranscriptionAdapter transcribes an audio resource reachable at a URL.
type TranscriptionAdapter interface {
	// Transcribe returns the best-effort full transcript of the audio at
	// audioFileURL, using the provider's default transcription
	// configuration. languageCode may be empty, meaning provider default.
	Transcribe(ctx context.Context, audioFileURL string, languageCode string) (string, error)
}

// EnhancementAdapter corrects a raw transcript against a reference text.
type EnhancementAdapter interface {
	// Enhance replaces incorrect or out-of-context words in transcript
	// using story as the correction source, and returns exactly one
	// corrected string. The provider is instructed to never add or remove
	// words; callers must not rely on that holding (see scoringengine's
	// token-count guard).
	Enhance(ctx context.Context, transcript string, story string) (string, error)
}

// TranscriptionError wraps any failure of the transcription provider.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// EnhancementError wraps a provider error or malformed completion from the
// enhancement LLM.
type EnhancementError struct {
	Err error
}

func (e *EnhancementError) Error() string {
	return "transcript enhancement failed: " + e.Err.Error()
}

func (e *EnhancementError) Unwrap() error { return e.Err }
