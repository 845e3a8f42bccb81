// Package progress tracks per-day study counters and the streak state machine.
// This is deliberately local-first: one user, one state blob, no aggregation
// across devices.
package progress

import (
	"encoding/json"
	"sort"
)

// DefaultDailyGoal is applied to fresh state and to loaded blobs that carry
// a non-positive goal.
const DefaultDailyGoal = 10

// State is the persisted progress blob.
//
// TodayAnswered and TodayCorrect are only meaningful while LastStudyDate
// equals the current civil date; they implicitly reset on the first answer
// of a new day. The answered-question set is serialized as a sorted list.
type State struct {
	CurrentStreak int
	LongestStreak int
	// LastStudyDate is a civil date key "2006-01-02", empty when the user
	// has never answered.
	LastStudyDate string
	TodayAnswered int
	TodayCorrect  int
	DailyGoal     int
	TotalAnswered int
	TotalCorrect  int

	answered map[string]struct{}
}

type stateJSON struct {
	CurrentStreak       int      `json:"currentStreak"`
	LongestStreak       int      `json:"longestStreak"`
	LastStudyDate       string   `json:"lastStudyDate,omitempty"`
	TodayAnswered       int      `json:"todayAnswered"`
	TodayCorrect        int      `json:"todayCorrect"`
	DailyGoal           int      `json:"dailyGoal"`
	TotalAnswered       int      `json:"totalAnswered"`
	TotalCorrect        int      `json:"totalCorrect"`
	AnsweredQuestionIds []string `json:"answeredQuestionIds"`
}

// NewState returns the initial no-history state.
func NewState() *State {
	return &State{
		DailyGoal: DefaultDailyGoal,
		answered:  make(map[string]struct{}),
	}
}

// MarkAnswered inserts a question id into the answered set. Repeats are
// no-ops.
func (s *State) MarkAnswered(questionID string) {
	if s.answered == nil {
		s.answered = make(map[string]struct{})
	}
	s.answered[questionID] = struct{}{}
}

// HasAnswered reports set membership for a question id.
func (s *State) HasAnswered(questionID string) bool {
	_, ok := s.answered[questionID]
	return ok
}

// AnsweredCount returns the size of the answered set.
func (s *State) AnsweredCount() int {
	return len(s.answered)
}

// AnsweredQuestionIDs returns the answered set as a sorted list.
func (s *State) AnsweredQuestionIDs() []string {
	ids := make([]string, 0, len(s.answered))
	for id := range s.answered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	clone := *s
	clone.answered = make(map[string]struct{}, len(s.answered))
	for id := range s.answered {
		clone.answered[id] = struct{}{}
	}
	return &clone
}

// Accuracy returns the all-time correct ratio in [0,1].
func (s *State) Accuracy() float64 {
	if s.TotalAnswered == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalAnswered)
}

// MarshalJSON flattens the answered set to a sorted list.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		CurrentStreak:       s.CurrentStreak,
		LongestStreak:       s.LongestStreak,
		LastStudyDate:       s.LastStudyDate,
		TodayAnswered:       s.TodayAnswered,
		TodayCorrect:        s.TodayCorrect,
		DailyGoal:           s.DailyGoal,
		TotalAnswered:       s.TotalAnswered,
		TotalCorrect:        s.TotalCorrect,
		AnsweredQuestionIds: s.AnsweredQuestionIDs(),
	})
}

// UnmarshalJSON rehydrates the answered list into a set and normalizes
// out-of-contract values so a stale or hand-edited blob still yields a
// usable state.
func (s *State) UnmarshalJSON(data []byte) error {
	var js stateJSON
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	s.CurrentStreak = js.CurrentStreak
	s.LongestStreak = js.LongestStreak
	s.LastStudyDate = js.LastStudyDate
	s.TodayAnswered = js.TodayAnswered
	s.TodayCorrect = js.TodayCorrect
	s.DailyGoal = js.DailyGoal
	s.TotalAnswered = js.TotalAnswered
	s.TotalCorrect = js.TotalCorrect
	s.answered = make(map[string]struct{}, len(js.AnsweredQuestionIds))
	for _, id := range js.AnsweredQuestionIds {
		if id != "" {
			s.answered[id] = struct{}{}
		}
	}
	s.normalize()
	return nil
}

func (s *State) normalize() {
	if s.DailyGoal < 1 {
		s.DailyGoal = DefaultDailyGoal
	}
	if s.CurrentStreak < 0 {
		s.CurrentStreak = 0
	}
	if s.LongestStreak < s.CurrentStreak {
		s.LongestStreak = s.CurrentStreak
	}
	if s.TodayAnswered < 0 {
		s.TodayAnswered = 0
	}
	if s.TodayCorrect > s.TodayAnswered {
		s.TodayCorrect = s.TodayAnswered
	}
	if s.TotalCorrect > s.TotalAnswered {
		s.TotalCorrect = s.TotalAnswered
	}
}
