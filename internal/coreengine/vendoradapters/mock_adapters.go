package vendoradapters

import "context"

// MockTranscriptionAdapter is a canned TranscriptionAdapter for tests and
// local runs without provider credentials. It records its calls.
type MockTranscriptionAdapter struct {
	TranscriptText string
	Err            error

	Calls []MockTranscribeCall
}

// MockTranscribeCall captures the arguments of one Transcribe invocation.
type MockTranscribeCall struct {
	AudioFileURL string
	LanguageCode string
}

// Transcribe implements TranscriptionAdapter.
func (m *MockTranscriptionAdapter) Transcribe(_ context.Context, audioFileURL string, languageCode string) (string, error) {
	m.Calls = append(m.Calls, MockTranscribeCall{AudioFileURL: audioFileURL, LanguageCode: languageCode})
	if m.Err != nil {
		return "", m.Err
	}
	return m.TranscriptText, nil
}

// MockEnhancementAdapter is a canned EnhancementAdapter for tests. When
// EnhancedText is empty it echoes the input transcript back, mimicking a
// model that found nothing to correct.
type MockEnhancementAdapter struct {
	EnhancedText string
	Err          error

	Calls []MockEnhanceCall
}

// MockEnhanceCall captures the arguments of one Enhance invocation.
type MockEnhanceCall struct {
	Transcript string
	Story      string
}

// Enhance implements EnhancementAdapter.
func (m *MockEnhancementAdapter) Enhance(_ context.Context, transcript string, story string) (string, error) {
	m.Calls = append(m.Calls, MockEnhanceCall{Transcript: transcript, Story: story})
	if m.Err != nil {
		return "", m.Err
	}
	if m.EnhancedText == "" {
		return transcript, nil
	}
	return m.EnhancedText, nil
}
