package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dentkao/dentkao/server/timezone"
)

// Clock supplies the current time. Tests inject a fixed clock to drive the
// day-rollover and streak transitions deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return realClock{}
}

// FixedClock is a Clock frozen at Time, for tests.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}

// Tracker owns the progress state machine.
//
// All mutations run under one mutex: the state is single-writer by design,
// but HTTP handlers may read while a write is in flight.
type Tracker struct {
	mu    sync.Mutex
	state *State
	loc   *time.Location
	clock Clock
}

// NewTracker wraps an existing state, typically one loaded from the store.
// A nil state starts from the initial no-history state.
func NewTracker(state *State, loc *time.Location) *Tracker {
	return NewTrackerWithClock(state, loc, realClock{})
}

// NewTrackerWithClock is NewTracker with an injected clock.
func NewTrackerWithClock(state *State, loc *time.Location, clock Clock) *Tracker {
	if state == nil {
		state = NewState()
	}
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Tracker{state: state, loc: loc, clock: clock}
}

// RecordAnswer counts one answered question and advances the streak machine.
// It returns a snapshot of the state after the update.
//
// Streak transitions, keyed on the last study date before this call:
//
//	same day   -> unchanged (repeat answers never inflate the streak)
//	yesterday  -> currentStreak+1
//	never      -> currentStreak=1
//	gap >= 2d  -> currentStreak=1, longestStreak raised to at least 1
func (t *Tracker) RecordAnswer(questionID string, isCorrect bool) *State {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	today := timezone.DateKey(now, t.loc)
	previous := t.state.LastStudyDate

	if previous != today {
		// First answer of a new day resets the day counters.
		t.state.TodayAnswered = 1
		t.state.TodayCorrect = 0
	} else {
		t.state.TodayAnswered++
	}
	if isCorrect {
		if previous != today {
			t.state.TodayCorrect = 1
		} else {
			t.state.TodayCorrect++
		}
	}

	t.state.TotalAnswered++
	if isCorrect {
		t.state.TotalCorrect++
	}
	t.state.LastStudyDate = today
	t.state.MarkAnswered(questionID)

	t.advanceStreak(previous, now, today)

	return t.state.Clone()
}

func (t *Tracker) advanceStreak(previous string, now time.Time, today string) {
	yesterday := timezone.DateKey(timezone.StartOfDay(now, t.loc).AddDate(0, 0, -1), t.loc)

	switch previous {
	case today:
		// Already counted today.
	case yesterday:
		t.state.CurrentStreak++
		if t.state.CurrentStreak > t.state.LongestStreak {
			t.state.LongestStreak = t.state.CurrentStreak
		}
	case "":
		t.state.CurrentStreak = 1
		if t.state.LongestStreak < 1 {
			t.state.LongestStreak = 1
		}
	default:
		t.state.CurrentStreak = 1
		// A doctored or corrupt blob can carry a study date alongside
		// longestStreak=0; the reset must still leave longest >= current.
		if t.state.LongestStreak < 1 {
			t.state.LongestStreak = 1
		}
	}
}

// SetDailyGoal updates the daily goal. Non-positive goals are rejected
// rather than clamped so the caller learns about the contract violation.
func (t *Tracker) SetDailyGoal(goal int) error {
	if goal < 1 {
		return errors.Errorf("daily goal must be positive, got %d", goal)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DailyGoal = goal
	return nil
}

// State returns a snapshot of the current state.
func (t *Tracker) State() *State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Snapshot returns the state as an observer should see it right now: when
// the last study date is not the current civil date, the day counters read
// as zero even though the stored fields still hold the previous day's
// values until the next answer overwrites them.
func (t *Tracker) Snapshot() *State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.state.Clone()
	today := timezone.DateKey(t.clock.Now(), t.loc)
	if state.LastStudyDate != today {
		state.TodayAnswered = 0
		state.TodayCorrect = 0
	}
	return state
}

// Today returns the day counters, accounting for rollover: when the last
// study date is not the current civil date the counters read as zero even
// though the stored fields still hold yesterday's values.
func (t *Tracker) Today() (answered, correct int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := timezone.DateKey(t.clock.Now(), t.loc)
	if t.state.LastStudyDate != today {
		return 0, 0
	}
	return t.state.TodayAnswered, t.state.TodayCorrect
}

// GoalReached reports whether today's answered count met the daily goal.
func (t *Tracker) GoalReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := timezone.DateKey(t.clock.Now(), t.loc)
	if t.state.LastStudyDate != today {
		return false
	}
	return t.state.TodayAnswered >= t.state.DailyGoal
}

// Summary returns a human-readable study summary.
func (t *Tracker) Summary() string {
	t.mu.Lock()
	state := t.state.Clone()
	today := timezone.DateKey(t.clock.Now(), t.loc)
	t.mu.Unlock()

	todayAnswered, todayCorrect := 0, 0
	if state.LastStudyDate == today {
		todayAnswered, todayCorrect = state.TodayAnswered, state.TodayCorrect
	}

	return fmt.Sprintf(
		`📊 學習統計

🔥 連續學習: %d 天 (最長 %d 天)
✅ 今日作答: %d / %d 題 (答對 %d 題)
📚 累計作答: %d 題 (答對 %d 題, 正確率 %.0f%%)
🗂️ 已作答題目: %d 題
🗓️ 最後學習日: %s`,
		state.CurrentStreak,
		state.LongestStreak,
		todayAnswered,
		state.DailyGoal,
		todayCorrect,
		state.TotalAnswered,
		state.TotalCorrect,
		state.Accuracy()*100,
		state.AnsweredCount(),
		formatLastStudyDate(state.LastStudyDate),
	)
}

func formatLastStudyDate(date string) string {
	if date == "" {
		return "無"
	}
	return date
}
