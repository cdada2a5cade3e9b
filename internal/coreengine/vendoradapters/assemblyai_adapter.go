package vendoradapters

import (
	"context"
	"errors"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/rs/zerolog"
)

// AssemblyAIAdapter implements TranscriptionAdapter using the AssemblyAI API.
type AssemblyAIAdapter struct {
	client *aai.Client
	log    zerolog.Logger
}

// NewAssemblyAIAdapter creates an adapter authenticated with the given API key.
func NewAssemblyAIAdapter(apiKey string, log zerolog.Logger) (*AssemblyAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assemblyai: API key must not be empty")
	}
	return &AssemblyAIAdapter{
		client: aai.NewClient(apiKey),
		log:    log.With().Str("component", "assemblyai").Logger(),
	}, nil
}

// Transcribe implements TranscriptionAdapter. The provider fetches the audio
// from audioFileURL itself, so the URL must be resolvable from the outside
// (presigned, CDN, or public).
func (a *AssemblyAIAdapter) Transcribe(ctx context.Context, audioFileURL string, languageCode string) (string, error) {
	params := &aai.TranscriptOptionalParams{}
	if languageCode != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(languageCode)
	}

	a.log.Debug().Str("audio_url", audioFileURL).Msg("submitting transcription")

	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, audioFileURL, params)
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "provider reported an error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", &TranscriptionError{Err: errors.New(msg)}
	}
	if transcript.Text == nil {
		return "", &TranscriptionError{Err: errors.New("provider returned no transcript text")}
	}

	return *transcript.Text, nil
}
