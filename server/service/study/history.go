package study

import (
	"context"
	"strings"

	"github.com/dentkao/dentkao/store"
)

// MaxSearchHistory bounds the stored search history length.
const MaxSearchHistory = 20

// RecordSearch prepends the search text to the history. Repeating an earlier
// search moves it to the front instead of duplicating it; blank searches are
// ignored.
func (s *Service) RecordSearch(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.history)+1)
	next = append(next, text)
	for _, existing := range s.history {
		if existing == text {
			continue
		}
		next = append(next, existing)
	}
	if len(next) > MaxSearchHistory {
		next = next[:MaxSearchHistory]
	}
	s.history = next

	return s.saveCollection(ctx, store.StateKeySearchHistory, s.history)
}

// ListSearchHistory returns the history, most recent first.
func (s *Service) ListSearchHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]string, len(s.history))
	copy(history, s.history)
	return history
}

// ClearSearchHistory empties the history.
func (s *Service) ClearSearchHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = []string{}
	return s.saveCollection(ctx, store.StateKeySearchHistory, s.history)
}
