package vendoradapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
)

// enhancementSystemPrompt instructs the model to correct words in place.
// The content string is the raw transcript, the context string is the
// reference story; the model must only substitute words, never add, remove,
// or re-punctuate.
const enhancementSystemPrompt = "You are the most important part of word error calculator. " +
	"You will be given two strings 'content' and 'context'. Context is the corrected expected string " +
	"and content is the sentence or paragraph spoken by the speaker. Your job is to replace the " +
	"incorrect or out of context words in the content string with the corrected spelling or within " +
	"context words in the context string. Your job is not to return the final corrected string, " +
	"just make necessary changes in the content string and output it, not even a word (or character) extra. " +
	"You don't have to add words or mess with the punctuation, just correct them"

// OpenAIEnhancementAdapter implements EnhancementAdapter using a single chat
// completion per call.
type OpenAIEnhancementAdapter struct {
	client oai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIEnhancementAdapter creates an adapter for the given model.
func NewOpenAIEnhancementAdapter(apiKey string, model string, log zerolog.Logger) (*OpenAIEnhancementAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	return &OpenAIEnhancementAdapter{
		client: oai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		log:    log.With().Str("component", "openai").Logger(),
	}, nil
}

// Enhance implements EnhancementAdapter.
func (a *OpenAIEnhancementAdapter) Enhance(ctx context.Context, transcript string, story string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(enhancementSystemPrompt),
			oai.UserMessage(fmt.Sprintf("content: %s context: %s", transcript, story)),
		},
	})
	if err != nil {
		return "", &EnhancementError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &EnhancementError{Err: errors.New("empty choices in completion response")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &EnhancementError{Err: errors.New("completion contained no text")}
	}

	a.log.Debug().Int("transcript_words", len(strings.Fields(transcript))).
		Int("enhanced_words", len(strings.Fields(content))).
		Msg("transcript enhanced")
	return content, nil
}
