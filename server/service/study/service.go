// Package study owns the per-user study state: progress and streaks,
// favorites, question folders, flashcards, search history, custom tabs, and
// question notes.
//
// Key features:
//   - Explicit session-scoped state, loaded once at startup and injected into
//     the API layer (no ambient globals)
//   - Save-on-mutation: every change is written back to its state blob before
//     the mutating call returns
//   - Corrupt or missing blobs degrade to the documented zero state
//
// The service layer abstracts business logic from the store layer and provides
// a clean interface for upper layers.
package study

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/progress"
	"github.com/dentkao/dentkao/server/queryengine"
	"github.com/dentkao/dentkao/store"
)

// Service holds the whole mutable study state for the active user session.
// All exported methods are safe for concurrent use; the state itself is
// single-writer in practice (one user), the mutex only guards against
// overlapping HTTP requests.
type Service struct {
	mu sync.Mutex

	store  *store.Store
	corpus *corpus.Corpus
	engine *queryengine.Engine

	tracker *progress.Tracker
	clock   progress.Clock

	favorites  []string
	folders    []*Folder
	flashcards []*Flashcard
	history    []string
	tabs       []*CustomTab
	notes      map[string]*Note
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects a clock, used by tests to pin the calendar day.
func WithClock(clock progress.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService loads every persisted collection and returns a ready service.
// Load failures are logged and fall back to empty collections so a damaged
// state file can never prevent startup.
func NewService(ctx context.Context, st *store.Store, c *corpus.Corpus, engine *queryengine.Engine, tracker *progress.Tracker, opts ...Option) *Service {
	s := &Service{
		store:   st,
		corpus:  c,
		engine:  engine,
		tracker: tracker,
		notes:   map[string]*Note{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = progress.SystemClock()
	}

	s.loadCollection(ctx, store.StateKeyFavorites, &s.favorites)
	s.loadCollection(ctx, store.StateKeyFolders, &s.folders)
	s.loadCollection(ctx, store.StateKeyFlashcards, &s.flashcards)
	s.loadCollection(ctx, store.StateKeySearchHistory, &s.history)
	s.loadCollection(ctx, store.StateKeyCustomTabs, &s.tabs)
	s.loadCollection(ctx, store.StateKeyNotes, &s.notes)
	if s.notes == nil {
		s.notes = map[string]*Note{}
	}
	return s
}

// loadCollection reads one state blob into out, leaving out at its zero value
// when the blob is missing or unreadable.
func (s *Service) loadCollection(ctx context.Context, key string, out any) {
	found, err := s.store.GetStateJSON(ctx, key, out)
	if err != nil {
		slog.Warn("failed to load study state blob, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	if !found {
		slog.Debug("study state blob not found, starting empty", slog.String("key", key))
	}
}

// saveCollection writes one collection back to its state blob.
func (s *Service) saveCollection(ctx context.Context, key string, value any) error {
	if _, err := s.store.PutStateJSON(ctx, key, value); err != nil {
		slog.Error("failed to persist study state blob",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Corpus returns the question corpus the service was built over.
func (s *Service) Corpus() *corpus.Corpus {
	return s.corpus
}

// Engine returns the filter engine the service was built over.
func (s *Service) Engine() *queryengine.Engine {
	return s.engine
}

// Tracker returns the progress tracker.
func (s *Service) Tracker() *progress.Tracker {
	return s.tracker
}

// RecordAnswer records an answered question, persists the updated progress
// state, and returns the post-update snapshot.
func (s *Service) RecordAnswer(ctx context.Context, questionID string, correct bool) (*progress.State, error) {
	state := s.tracker.RecordAnswer(questionID, correct)
	if err := s.saveCollection(ctx, store.StateKeyProgress, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetDailyGoal updates the daily goal and persists the progress state.
func (s *Service) SetDailyGoal(ctx context.Context, goal int) (*progress.State, error) {
	if err := s.tracker.SetDailyGoal(goal); err != nil {
		return nil, apierrors.InvalidArgument(err.Error())
	}
	state := s.tracker.State()
	if err := s.saveCollection(ctx, store.StateKeyProgress, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Flush writes every collection to the store. Called on shutdown so teardown
// never loses state even if an individual save failed earlier.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, save := range []struct {
		key   string
		value any
	}{
		{store.StateKeyProgress, s.tracker.State()},
		{store.StateKeyFavorites, s.favorites},
		{store.StateKeyFolders, s.folders},
		{store.StateKeyFlashcards, s.flashcards},
		{store.StateKeySearchHistory, s.history},
		{store.StateKeyCustomTabs, s.tabs},
		{store.StateKeyNotes, s.notes},
	} {
		if err := s.saveCollection(ctx, save.key, save.value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
