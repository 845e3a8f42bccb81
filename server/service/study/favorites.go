package study

import (
	"context"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/store"
)

// ToggleFavorite adds the question to the favorites when absent and removes
// it when present. It returns the resulting favorite state.
func (s *Service) ToggleFavorite(ctx context.Context, questionID string) (bool, error) {
	id := corpus.NormalizeID(questionID)
	if s.corpus.FindByID(id) == nil {
		return false, apierrors.NotFoundf("question %s not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favorited := false
	next := make([]string, 0, len(s.favorites)+1)
	for _, existing := range s.favorites {
		if existing == id {
			continue
		}
		next = append(next, existing)
	}
	if len(next) == len(s.favorites) {
		next = append(next, id)
		favorited = true
	}
	s.favorites = next

	if err := s.saveCollection(ctx, store.StateKeyFavorites, s.favorites); err != nil {
		return favorited, err
	}
	return favorited, nil
}

// IsFavorite reports whether the question is favorited.
func (s *Service) IsFavorite(questionID string) bool {
	id := corpus.NormalizeID(questionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.favorites {
		if existing == id {
			return true
		}
	}
	return false
}

// ListFavoriteIDs returns the favorited question ids in insertion order.
func (s *Service) ListFavoriteIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.favorites))
	copy(ids, s.favorites)
	return ids
}

// ListFavoriteQuestions resolves the favorites against the corpus, dropping
// ids that no longer resolve (a corpus update may have removed a question).
func (s *Service) ListFavoriteQuestions() []*corpus.Question {
	ids := s.ListFavoriteIDs()
	questions := make([]*corpus.Question, 0, len(ids))
	for _, id := range ids {
		if q := s.corpus.FindByID(id); q != nil {
			questions = append(questions, q)
		}
	}
	return questions
}
