// Package metricscalculator implements the word error rate primitive and
// the blended-error combination used by the scoring engine.
package metricscalculator

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// werOptions configures the Levenshtein alignment for WER: unit costs and
// exact equality on interned word symbols.
var werOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(sourceCharacter rune, targetCharacter rune) bool {
		return sourceCharacter == targetCharacter
	},
}

// CalculateWER calculates the Word Error Rate between a reference text and a
// hypothesis text.
// WER = (Substitutions + Insertions + Deletions) / Number of words in reference.
//
// Tokenization is whitespace splitting; words are compared exactly, with no
// case or punctuation normalization. An empty reference cannot normalize the
// rate: the result is 1.0 together with an error when the hypothesis is
// non-empty, 0.0 when both sides are empty.
func CalculateWER(reference string, hypothesis string) (float64, error) {
	refWords := strings.Fields(reference)
	hypWords := strings.Fields(hypothesis)

	nRef := len(refWords)
	if nRef == 0 {
		if len(hypWords) == 0 {
			return 0.0, nil
		}
		return 1.0, fmt.Errorf("reference is empty, cannot normalize WER (hypothesis: %d words, treated as 100%% error)", len(hypWords))
	}

	// The levenshtein package aligns rune sequences, so each distinct word
	// is interned as a unique rune and the alignment runs on word symbols.
	refSyms, hypSyms := internWords(refWords, hypWords)

	distance := levenshtein.DistanceForStrings(refSyms, hypSyms, werOptions)
	return float64(distance) / float64(nRef), nil
}

// BlendWER combines the three WER measurements into one error value:
//
//	wer1 — raw transcript against the reference text
//	wer2 — enhanced transcript against the reference text
//	wer3 — enhanced transcript against the raw transcript
//
// wer3 measures how much the enhancement changed the raw transcript and acts
// as the mixing weight: no correction keeps the raw error, a full rewrite
// defers to the corrected error.
func BlendWER(wer1, wer2, wer3 float64) float64 {
	return (1-wer3)*wer1 + wer3*wer2
}

// internSymbolBase is where interned word symbols start. The Unicode private
// use area keeps them clear of surrogates and real text.
const internSymbolBase = '\uE000'

// internWords maps every distinct word across both slices to a unique rune
// and returns the two sequences re-encoded as those runes.
func internWords(a, b []string) ([]rune, []rune) {
	symbols := make(map[string]rune, len(a)+len(b))
	next := rune(internSymbolBase)

	encode := func(words []string) []rune {
		out := make([]rune, len(words))
		for i, w := range words {
			sym, ok := symbols[w]
			if !ok {
				sym = next
				symbols[w] = sym
				next++
			}
			out[i] = sym
		}
		return out
	}

	return encode(a), encode(b)
}
