package study

import (
	"context"
	"sort"
	"strings"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/store"
)

// Note is a markdown study note attached to one question.
type Note struct {
	QuestionID string `json:"questionId"`
	Content    string `json:"content"`
	UpdatedTs  int64  `json:"updatedTs"`
}

// UpsertNote writes the note for a question, replacing any previous content.
// An empty content deletes the note.
func (s *Service) UpsertNote(ctx context.Context, questionID, content string) (*Note, error) {
	id := corpus.NormalizeID(questionID)
	if s.corpus.FindByID(id) == nil {
		return nil, apierrors.NotFoundf("question %s not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(content) == "" {
		delete(s.notes, id)
		if err := s.saveCollection(ctx, store.StateKeyNotes, s.notes); err != nil {
			return nil, err
		}
		return nil, nil
	}

	note := &Note{
		QuestionID: id,
		Content:    content,
		UpdatedTs:  s.clock.Now().Unix(),
	}
	s.notes[id] = note

	if err := s.saveCollection(ctx, store.StateKeyNotes, s.notes); err != nil {
		return nil, err
	}
	return note, nil
}

// GetNote returns the note for a question, or nil when none exists.
func (s *Service) GetNote(questionID string) *Note {
	id := corpus.NormalizeID(questionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes[id]
}

// DeleteNote removes the note for a question.
func (s *Service) DeleteNote(ctx context.Context, questionID string) error {
	id := corpus.NormalizeID(questionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return apierrors.NotFoundf("no note for question %s", id)
	}
	delete(s.notes, id)

	return s.saveCollection(ctx, store.StateKeyNotes, s.notes)
}

// ListNotes returns every note sorted by question id.
func (s *Service) ListNotes() []*Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]*Note, 0, len(s.notes))
	for _, note := range s.notes {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].QuestionID < notes[j].QuestionID
	})
	return notes
}
