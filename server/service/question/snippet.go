package question

import (
	"strings"
	"unicode"
)

// SnippetExtractor extracts a readable context window around matched
// positions, adjusting edges to word boundaries so CJK sentences are not
// cut mid-clause.
type SnippetExtractor struct {
	defaultContextChars int
	maxContextChars     int
}

// NewSnippetExtractor creates a new SnippetExtractor with default settings.
func NewSnippetExtractor() *SnippetExtractor {
	return &SnippetExtractor{
		defaultContextChars: 50,
		maxContextChars:     200,
	}
}

// ExtractOptions configures snippet extraction behavior.
type ExtractOptions struct {
	ContextChars int  // Characters to include before/after the match center
	AddEllipsis  bool // Whether to add "..." for truncated content
}

// ExtractSnippet extracts a snippet around the first match and returns it
// together with the highlight positions re-based onto the snippet.
func (e *SnippetExtractor) ExtractSnippet(content string, matches []Highlight, opts *ExtractOptions) (string, []Highlight) {
	contextChars := e.defaultContextChars
	addEllipsis := true
	if opts != nil {
		if opts.ContextChars > 0 {
			contextChars = opts.ContextChars
		}
		addEllipsis = opts.AddEllipsis
	}
	if contextChars > e.maxContextChars {
		contextChars = e.maxContextChars
	}

	contentRunes := []rune(content)
	contentLen := len(contentRunes)
	if contentLen == 0 {
		return "", nil
	}

	// No matches: show the beginning of the question text.
	if len(matches) == 0 {
		end := contextChars * 2
		if end > contentLen {
			end = contentLen
		}
		end = e.adjustToWordBoundary(contentRunes, end, true)
		snippet := string(contentRunes[:end])
		if addEllipsis && end < contentLen {
			snippet += "..."
		}
		return snippet, nil
	}

	// Center the window on the first match, the one closest to the start.
	start, end := e.window(matches[0].Start, contentLen, contextChars)
	start = e.adjustToWordBoundary(contentRunes, start, false)
	end = e.adjustToWordBoundary(contentRunes, end, true)

	var builder strings.Builder
	prefixLen := 0
	if addEllipsis && start > 0 {
		builder.WriteString("...")
		prefixLen = 3
	}
	builder.WriteString(string(contentRunes[start:end]))
	if addEllipsis && end < contentLen {
		builder.WriteString("...")
	}

	adjusted := make([]Highlight, 0, len(matches))
	for _, m := range matches {
		if m.Start >= start && m.End <= end {
			adjusted = append(adjusted, Highlight{
				Start:       m.Start - start + prefixLen,
				End:         m.End - start + prefixLen,
				MatchedText: m.MatchedText,
			})
		}
	}

	return builder.String(), adjusted
}

// window computes the snippet bounds around center, shifting the window
// rather than shrinking it when it hits either end of the content.
func (e *SnippetExtractor) window(center, contentLen, contextChars int) (start, end int) {
	start = center - contextChars
	end = center + contextChars

	if start < 0 {
		end += -start
		start = 0
	}
	if end > contentLen {
		start -= end - contentLen
		end = contentLen
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

// adjustToWordBoundary nudges pos to the nearest separator within a small
// scan range, backward for window starts and forward for window ends.
func (e *SnippetExtractor) adjustToWordBoundary(runes []rune, pos int, isEnd bool) int {
	runeLen := len(runes)
	if pos <= 0 {
		return 0
	}
	if pos >= runeLen {
		return runeLen
	}

	const maxAdjust = 10

	if isEnd {
		for i := pos; i < runeLen && i < pos+maxAdjust; i++ {
			if isSeparator(runes[i]) {
				return i
			}
		}
	} else {
		for i := pos - 1; i >= 0 && i >= pos-maxAdjust; i-- {
			if isSeparator(runes[i]) {
				return i + 1
			}
		}
	}
	return pos
}

// isSeparator returns true if the rune is a word separator.
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '。', '，', '、', '；', '：', '！', '？', '…',
		'.', ',', '!', '?', ';', ':':
		return true
	}
	return false
}
