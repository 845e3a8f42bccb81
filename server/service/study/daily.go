package study

import (
	"hash/fnv"
	"time"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/timezone"
)

// DailyPick returns the question of the given civil day. The pick is a pure
// function of the date key, so every client sees the same question all day
// and the sequence never repeats a recent pick by accident. Scored-out
// questions are never picked.
func (s *Service) DailyPick(loc *time.Location) (*corpus.Question, string, error) {
	dateKey := timezone.DateKey(s.clock.Now(), loc)
	q, err := s.PickForDate(dateKey)
	return q, dateKey, err
}

// PickForDate returns the deterministic pick for a specific date key.
func (s *Service) PickForDate(dateKey string) (*corpus.Question, error) {
	candidates := []*corpus.Question{}
	for _, q := range s.corpus.Questions() {
		if q.IsExcluded {
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 {
		return nil, apierrors.FailedPrecondition("corpus has no pickable questions")
	}

	h := fnv.New64a()
	h.Write([]byte(dateKey))
	index := int(h.Sum64() % uint64(len(candidates)))
	return candidates[index], nil
}
