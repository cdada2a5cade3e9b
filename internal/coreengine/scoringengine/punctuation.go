package scoringengine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/rs/zerolog"
)

// PunctuationDifference records one sentence position where the punctuation
// marks of the transcript and the story disagree.
type PunctuationDifference struct {
	SentenceIndex         int      `json:"sentence_index"`
	TranscriptPunctuation []string `json:"transcript_punctuation"`
	StoryPunctuation      []string `json:"story_punctuation"`
}

// punctuationMarks is the ASCII punctuation set compared during analysis.
const punctuationMarks = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// The punkt sentence tokenizer loads its embedded training data once per
// process.
var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	if tokenizerErr != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", tokenizerErr)
	}
	return tokenizer, nil
}

// PunctuationAnalysis compares the cached transcript against the story.
func (s *Scorer) PunctuationAnalysis() ([]PunctuationDifference, error) {
	return AnalyzePunctuation(s.trueTranscript, s.story, s.log)
}

// AnalyzePunctuation splits transcript and story into sentences and compares
// the punctuation-mark sequence of each sentence pair by position. When
// sentence counts differ, only the overlapping prefix is compared and the
// mismatch is logged, never raised.
func AnalyzePunctuation(transcript, story string, log zerolog.Logger) ([]PunctuationDifference, error) {
	tok, err := sentenceTokenizer()
	if err != nil {
		return nil, err
	}

	transcriptSentences := splitSentences(tok, transcript)
	storySentences := splitSentences(tok, story)

	if len(transcriptSentences) != len(storySentences) {
		log.Warn().
			Int("transcript_sentences", len(transcriptSentences)).
			Int("story_sentences", len(storySentences)).
			Msg("sentence count mismatch between transcript and story")
	}

	n := len(transcriptSentences)
	if len(storySentences) < n {
		n = len(storySentences)
	}

	var differences []PunctuationDifference
	for i := 0; i < n; i++ {
		tp := punctuationTokens(transcriptSentences[i])
		sp := punctuationTokens(storySentences[i])
		if !slices.Equal(tp, sp) {
			differences = append(differences, PunctuationDifference{
				SentenceIndex:         i,
				TranscriptPunctuation: tp,
				StoryPunctuation:      sp,
			})
		}
	}
	return differences, nil
}

// splitSentences tokenizes text into trimmed, non-empty sentence strings.
func splitSentences(tok *sentences.DefaultSentenceTokenizer, text string) []string {
	var out []string
	for _, s := range tok.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// punctuationTokens extracts the punctuation marks of a sentence in order.
// Each mark is its own token, matching how a word tokenizer separates
// punctuation from words. An apostrophe inside a word (don't) stays part of
// the word and is not reported.
func punctuationTokens(sentence string) []string {
	runes := []rune(sentence)
	tokens := []string{}
	for i, r := range runes {
		if !strings.ContainsRune(punctuationMarks, r) {
			continue
		}
		if r == '\'' && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}
