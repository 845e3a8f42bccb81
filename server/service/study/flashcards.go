package study

import (
	"context"
	"math"
	"sort"

	"github.com/dentkao/dentkao/internal/util"
	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/store"
)

// SM-2 defaults for a freshly created card.
const (
	initialInterval   = 1
	initialEaseFactor = 2.5
	minEaseFactor     = 1.3
)

// Flashcard schedules one question for spaced-repetition review using the
// SM-2 algorithm. Interval is in days; quality grades run 0 (blackout) to
// 5 (perfect recall).
type Flashcard struct {
	UID            string  `json:"uid"`
	QuestionID     string  `json:"questionId"`
	Interval       int     `json:"interval"`
	EaseFactor     float64 `json:"easeFactor"`
	Repetitions    int     `json:"repetitions"`
	LastReviewedTs int64   `json:"lastReviewedTs"`
	DueTs          int64   `json:"dueTs"`
	CreatedTs      int64   `json:"createdTs"`
}

// AddFlashcard creates a card for the question. Each question carries at most
// one card; adding twice returns the existing card.
func (s *Service) AddFlashcard(ctx context.Context, questionID string) (*Flashcard, error) {
	id := corpus.NormalizeID(questionID)
	if s.corpus.FindByID(id) == nil {
		return nil, apierrors.NotFoundf("question %s not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.flashcards {
		if card.QuestionID == id {
			return card, nil
		}
	}

	now := s.clock.Now()
	card := &Flashcard{
		UID:        util.GenUID(),
		QuestionID: id,
		Interval:   initialInterval,
		EaseFactor: initialEaseFactor,
		CreatedTs:  now.Unix(),
		DueTs:      now.AddDate(0, 0, initialInterval).Unix(),
	}
	s.flashcards = append(s.flashcards, card)

	if err := s.saveCollection(ctx, store.StateKeyFlashcards, s.flashcards); err != nil {
		return nil, err
	}
	return card, nil
}

// ReviewFlashcard grades a review session and reschedules the card.
//
// SM-2: the ease factor moves by 0.1-(5-q)*(0.08+(5-q)*0.02) with a floor of
// 1.3. A failing grade (q < 3) restarts the interval at one day; otherwise
// the interval steps 1 -> 6 -> ceil(previous*ease).
func (s *Service) ReviewFlashcard(ctx context.Context, uid string, quality int) (*Flashcard, error) {
	if quality < 0 || quality > 5 {
		return nil, apierrors.InvalidArgumentf("quality must be between 0 and 5, got %d", quality)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.findFlashcardLocked(uid)
	if card == nil {
		return nil, apierrors.NotFoundf("flashcard %s not found", uid)
	}

	q := float64(quality)
	ease := card.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < minEaseFactor {
		ease = minEaseFactor
	}

	var interval int
	if quality < 3 {
		interval = 1
		card.Repetitions = 0
	} else {
		switch card.Repetitions {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Ceil(float64(card.Interval) * ease))
		}
		card.Repetitions++
	}

	now := s.clock.Now()
	card.EaseFactor = ease
	card.Interval = interval
	card.LastReviewedTs = now.Unix()
	card.DueTs = now.AddDate(0, 0, interval).Unix()

	if err := s.saveCollection(ctx, store.StateKeyFlashcards, s.flashcards); err != nil {
		return nil, err
	}
	return card, nil
}

// RemoveFlashcard deletes a card.
func (s *Service) RemoveFlashcard(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*Flashcard, 0, len(s.flashcards))
	for _, card := range s.flashcards {
		if card.UID == uid {
			continue
		}
		next = append(next, card)
	}
	if len(next) == len(s.flashcards) {
		return apierrors.NotFoundf("flashcard %s not found", uid)
	}
	s.flashcards = next

	return s.saveCollection(ctx, store.StateKeyFlashcards, s.flashcards)
}

// ListFlashcards returns every card in creation order.
func (s *Service) ListFlashcards() []*Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make([]*Flashcard, len(s.flashcards))
	copy(cards, s.flashcards)
	return cards
}

// DueFlashcards returns the cards due at the current time, most overdue
// first.
func (s *Service) DueFlashcards() []*Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	due := []*Flashcard{}
	for _, card := range s.flashcards {
		if card.DueTs <= now {
			due = append(due, card)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].DueTs < due[j].DueTs
	})
	return due
}

func (s *Service) findFlashcardLocked(uid string) *Flashcard {
	for _, card := range s.flashcards {
		if card.UID == uid {
			return card
		}
	}
	return nil
}
