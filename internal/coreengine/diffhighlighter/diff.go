// Package diffhighlighter produces a word-level alignment diff between a
// reference text and a candidate reading, tagging each token for downstream
// display. The diff never affects the score.
package diffhighlighter

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// TokenKind classifies a diff token.
type TokenKind string

const (
	// Missing marks a word present in the original text only.
	Missing TokenKind = "missing"
	// Extra marks a word present in the candidate text only.
	Extra TokenKind = "extra"
	// Same marks a word present in both texts.
	Same TokenKind = "same"
)

// Token is one word of the aligned diff.
type Token struct {
	Text string    `json:"text"`
	Kind TokenKind `json:"kind"`
}

var diffOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(sourceCharacter rune, targetCharacter rune) bool {
		return sourceCharacter == targetCharacter
	},
}

// Highlight aligns the whitespace tokens of originalText and candidateText
// and returns the annotated token sequence in reading order. A word replaced
// by another yields the original word tagged Missing followed by the
// candidate word tagged Extra.
func Highlight(originalText, candidateText string) []Token {
	origWords := strings.Fields(originalText)
	candWords := strings.Fields(candidateText)

	origSyms, candSyms := internWords(origWords, candWords)
	script := levenshtein.EditScriptForStrings(origSyms, candSyms, diffOptions)

	tokens := make([]Token, 0, len(script))
	i, j := 0, 0
	for _, op := range script {
		switch op {
		case levenshtein.Match:
			tokens = append(tokens, Token{Text: origWords[i], Kind: Same})
			i++
			j++
		case levenshtein.Sub:
			tokens = append(tokens, Token{Text: origWords[i], Kind: Missing})
			tokens = append(tokens, Token{Text: candWords[j], Kind: Extra})
			i++
			j++
		case levenshtein.Del:
			tokens = append(tokens, Token{Text: origWords[i], Kind: Missing})
			i++
		case levenshtein.Ins:
			tokens = append(tokens, Token{Text: candWords[j], Kind: Extra})
			j++
		}
	}
	return tokens
}

// internWords maps every distinct word across both slices to a unique rune in
// the private use area so the rune-based edit script can align word sequences.
func internWords(a, b []string) ([]rune, []rune) {
	symbols := make(map[string]rune, len(a)+len(b))
	next := rune('\uE000')

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
