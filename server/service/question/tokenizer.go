// Package question provides search-result presentation services: query
// tokenization, match highlighting, and snippet extraction over question
// text and choices.
package question

import (
	"strings"
	"unicode"
)

// Tokenizer splits search queries into highlightable tokens.
// Supports both Chinese and English text.
type Tokenizer struct {
	// minTokenLen is the minimum length for a token to be considered valid
	minTokenLen int
}

// NewTokenizer creates a new Tokenizer instance.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		minTokenLen: 1,
	}
}

// Tokenize splits the input text into searchable tokens.
// For Chinese: splits by character (each character is a token)
// For English: splits by whitespace and punctuation
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.TrimSpace(text)
	var tokens []string
	seen := make(map[string]bool)

	flush := func(word *strings.Builder) {
		if word.Len() == 0 {
			return
		}
		token := strings.ToLower(word.String())
		if len(token) >= t.minTokenLen && !seen[token] {
			tokens = append(tokens, token)
			seen[token] = true
		}
		word.Reset()
	}

	var currentWord strings.Builder
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush(&currentWord)
			char := string(r)
			if !seen[char] {
				tokens = append(tokens, char)
				seen[char] = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			currentWord.WriteRune(r)
		default:
			flush(&currentWord)
		}
	}
	flush(&currentWord)

	return tokens
}
