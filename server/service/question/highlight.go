package question

import (
	"sort"
	"strings"

	"github.com/dentkao/dentkao/server/corpus"
)

// Highlight represents a highlighted match in the question text.
// Positions are rune offsets into the snippet.
type Highlight struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	MatchedText string `json:"matchedText"`
}

// HighlightedQuestion pairs a question with its search snippet.
type HighlightedQuestion struct {
	Question   *corpus.Question `json:"question"`
	Snippet    string           `json:"snippet"`
	Highlights []Highlight      `json:"highlights"`
}

// Highlighter turns filter results into highlighted search results.
type Highlighter struct {
	tokenizer        *Tokenizer
	snippetExtractor *SnippetExtractor
}

// NewHighlighter creates a new Highlighter instance.
func NewHighlighter() *Highlighter {
	return &Highlighter{
		tokenizer:        NewTokenizer(),
		snippetExtractor: NewSnippetExtractor(),
	}
}

// HighlightOptions configures highlighting.
type HighlightOptions struct {
	ContextChars int
}

// HighlightAll builds highlighted results for a list of matched questions.
func (h *Highlighter) HighlightAll(questions []*corpus.Question, query string, opts *HighlightOptions) []HighlightedQuestion {
	contextChars := 50
	if opts != nil && opts.ContextChars > 0 {
		contextChars = opts.ContextChars
	}

	tokens := h.tokenizer.Tokenize(query)

	results := make([]HighlightedQuestion, 0, len(questions))
	for _, q := range questions {
		matches := findMatches(q.QuestionText, tokens)
		snippet, adjusted := h.snippetExtractor.ExtractSnippet(
			q.QuestionText,
			matches,
			&ExtractOptions{ContextChars: contextChars, AddEllipsis: true},
		)
		results = append(results, HighlightedQuestion{
			Question:   q,
			Snippet:    snippet,
			Highlights: adjusted,
		})
	}
	return results
}

// findMatches finds all occurrences of tokens in the content.
// Offsets are rune-based so CJK positions line up with client rendering.
func findMatches(content string, tokens []string) []Highlight {
	if len(tokens) == 0 {
		return nil
	}

	var matches []Highlight
	contentRunes := []rune(content)
	contentLen := len(contentRunes)

	for _, token := range tokens {
		tokenRunes := []rune(strings.ToLower(token))
		tokenLen := len(tokenRunes)
		if tokenLen == 0 {
			continue
		}

		// Sliding window over runes keeps offsets aligned even when
		// lowercasing changes byte lengths.
		for i := 0; i+tokenLen <= contentLen; i++ {
			window := strings.ToLower(string(contentRunes[i : i+tokenLen]))
			if window == string(tokenRunes) {
				matches = append(matches, Highlight{
					Start:       i,
					End:         i + tokenLen,
					MatchedText: string(contentRunes[i : i+tokenLen]),
				})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return removeOverlaps(matches)
}

// removeOverlaps removes overlapping highlights, keeping the earlier ones.
func removeOverlaps(matches []Highlight) []Highlight {
	if len(matches) <= 1 {
		return matches
	}

	result := make([]Highlight, 0, len(matches))
	result = append(result, matches[0])
	for i := 1; i < len(matches); i++ {
		if matches[i].Start >= result[len(result)-1].End {
			result = append(result, matches[i])
		}
	}
	return result
}
