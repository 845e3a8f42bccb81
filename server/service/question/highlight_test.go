package question

import (
	"testing"

	"github.com/dentkao/dentkao/server/corpus"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tokenizer := NewTokenizer()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "English words",
			input:    "Streptococcus mutans",
			expected: []string{"streptococcus", "mutans"},
		},
		{
			name:     "Chinese characters",
			input:    "齲蝕",
			expected: []string{"齲", "蝕"},
		},
		{
			name:     "Mixed Chinese and English",
			input:    "mutans菌",
			expected: []string{"mutans", "菌"},
		},
		{
			name:     "With punctuation",
			input:    "開髓、清創!",
			expected: []string{"開", "髓", "清", "創"},
		},
		{
			name:     "Empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "Whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "Duplicate tokens",
			input:    "test test TEST 牙牙",
			expected: []string{"test", "牙"},
		},
		{
			name:     "Identifier-like numbers",
			input:    "112B48",
			expected: []string{"112b48"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tokenizer.Tokenize(tt.input)

			if len(result) != len(tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, result, tt.expected)
				return
			}
			for i, token := range result {
				if token != tt.expected[i] {
					t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.input, i, token, tt.expected[i])
				}
			}
		})
	}
}

func TestFindMatches(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		tokens        []string
		expectedCount int
	}{
		{
			name:          "Single CJK match",
			content:       "齲蝕致病菌的主要菌種",
			tokens:        []string{"齲"},
			expectedCount: 1,
		},
		{
			name:          "Repeated character",
			content:       "菌種與菌落",
			tokens:        []string{"菌"},
			expectedCount: 2,
		},
		{
			name:          "Case-insensitive English",
			content:       "Streptococcus mutans感染",
			tokens:        []string{"streptococcus"},
			expectedCount: 1,
		},
		{
			name:          "No match",
			content:       "窩洞修形",
			tokens:        []string{"根管"},
			expectedCount: 0,
		},
		{
			name:          "No tokens",
			content:       "窩洞修形",
			tokens:        nil,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := findMatches(tt.content, tt.tokens)
			if len(matches) != tt.expectedCount {
				t.Errorf("findMatches(%q, %v) returned %d matches, want %d",
					tt.content, tt.tokens, len(matches), tt.expectedCount)
			}
		})
	}
}

func TestFindMatchesRuneOffsets(t *testing.T) {
	// Offsets must count runes, not bytes, for CJK content.
	matches := findMatches("齲蝕致病菌", []string{"致"})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Start != 2 || matches[0].End != 3 {
		t.Errorf("match at [%d,%d), want [2,3)", matches[0].Start, matches[0].End)
	}
	if matches[0].MatchedText != "致" {
		t.Errorf("matched text %q, want %q", matches[0].MatchedText, "致")
	}
}

func TestRemoveOverlaps(t *testing.T) {
	matches := []Highlight{
		{Start: 0, End: 3},
		{Start: 2, End: 5},
		{Start: 5, End: 7},
	}
	result := removeOverlaps(matches)
	if len(result) != 2 {
		t.Fatalf("expected 2 non-overlapping matches, got %d", len(result))
	}
	if result[0].Start != 0 || result[1].Start != 5 {
		t.Errorf("unexpected matches kept: %+v", result)
	}
}

func TestHighlighter_HighlightAll(t *testing.T) {
	h := NewHighlighter()
	questions := []*corpus.Question{
		{ID: "110A003", QuestionText: "齲蝕致病菌的主要菌種為何?"},
		{ID: "112B048", QuestionText: "窩洞修形時的固位形設計"},
	}

	results := h.HighlightAll(questions, "齲蝕", nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if len(results[0].Highlights) == 0 {
		t.Error("matching question should carry highlights")
	}
	if results[0].Snippet == "" {
		t.Error("matching question should carry a snippet")
	}
	if len(results[1].Highlights) != 0 {
		t.Error("non-matching question should carry no highlights")
	}
	// Even without matches the snippet shows the question start.
	if results[1].Snippet == "" {
		t.Error("non-matching question should still have a snippet")
	}
}
