package question

import (
	"strings"
	"testing"
)

func TestExtractSnippet_ShortContent(t *testing.T) {
	e := NewSnippetExtractor()
	content := "齲蝕致病菌的主要菌種為何?"
	matches := findMatches(content, []string{"齲"})

	snippet, highlights := e.ExtractSnippet(content, matches, nil)
	if snippet != content {
		t.Errorf("short content should be returned whole, got %q", snippet)
	}
	if len(highlights) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(highlights))
	}
	if highlights[0].Start != 0 || highlights[0].End != 1 {
		t.Errorf("highlight at [%d,%d), want [0,1)", highlights[0].Start, highlights[0].End)
	}
}

func TestExtractSnippet_LongContent(t *testing.T) {
	e := NewSnippetExtractor()
	// A long run of filler with the match far from the start.
	content := strings.Repeat("填充文字。", 30) + "齲蝕致病菌" + strings.Repeat("。後續內容", 30)
	matches := findMatches(content, []string{"齲", "蝕"})

	snippet, highlights := e.ExtractSnippet(content, matches, &ExtractOptions{ContextChars: 20, AddEllipsis: true})

	if !strings.HasPrefix(snippet, "...") {
		t.Errorf("snippet should start with ellipsis, got %q", snippet)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("snippet should end with ellipsis, got %q", snippet)
	}
	if !strings.Contains(snippet, "齲蝕") {
		t.Errorf("snippet must contain the match, got %q", snippet)
	}
	if len(highlights) == 0 {
		t.Fatal("expected highlights within the snippet")
	}

	// Re-based positions must point at the matched text inside the snippet.
	snippetRunes := []rune(snippet)
	first := highlights[0]
	if got := string(snippetRunes[first.Start:first.End]); got != first.MatchedText {
		t.Errorf("highlight positions point at %q, want %q", got, first.MatchedText)
	}
}

func TestExtractSnippet_NoMatches(t *testing.T) {
	e := NewSnippetExtractor()
	content := strings.Repeat("很長的題目內容。", 40)

	snippet, highlights := e.ExtractSnippet(content, nil, &ExtractOptions{ContextChars: 10, AddEllipsis: true})
	if highlights != nil {
		t.Errorf("no matches should mean no highlights, got %v", highlights)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("truncated head snippet should end with ellipsis, got %q", snippet)
	}
	if len([]rune(snippet)) >= len([]rune(content)) {
		t.Error("snippet should be shorter than the content")
	}
}

func TestExtractSnippet_EmptyContent(t *testing.T) {
	e := NewSnippetExtractor()
	snippet, highlights := e.ExtractSnippet("", nil, nil)
	if snippet != "" || highlights != nil {
		t.Errorf("empty content should yield empty snippet, got %q %v", snippet, highlights)
	}
}

func TestWindowShifting(t *testing.T) {
	e := NewSnippetExtractor()

	tests := []struct {
		name       string
		center     int
		contentLen int
		context    int
		wantStart  int
		wantEnd    int
	}{
		{"centered", 50, 100, 10, 40, 60},
		{"hits start", 3, 100, 10, 0, 20},
		{"hits end", 97, 100, 10, 77, 100},
		{"window larger than content", 5, 8, 10, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := e.window(tt.center, tt.contentLen, tt.context)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("window(%d, %d, %d) = [%d,%d), want [%d,%d)",
					tt.center, tt.contentLen, tt.context, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
