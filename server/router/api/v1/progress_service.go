package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
)

type recordAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

type setDailyGoalRequest struct {
	DailyGoal int `json:"dailyGoal"`
}

type progressSummaryResponse struct {
	Summary string `json:"summary"`
}

// GetProgress returns the progress snapshot with today's counters zeroed
// when no answer has been recorded today.
// GET /api/v1/progress
func (s *APIV1Service) GetProgress(c echo.Context) error {
	return writeOK(c, s.Study.Tracker().Snapshot())
}

// GetProgressSummary returns the human-readable study summary.
// GET /api/v1/progress/summary
func (s *APIV1Service) GetProgressSummary(c echo.Context) error {
	return writeOK(c, progressSummaryResponse{Summary: s.Study.Tracker().Summary()})
}

// RecordAnswer records one answered question and returns the updated state.
// POST /api/v1/progress/answers
func (s *APIV1Service) RecordAnswer(c echo.Context) error {
	req := &recordAnswerRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	id := corpus.NormalizeID(req.QuestionID)
	if s.Study.Corpus().FindByID(id) == nil {
		return writeError(c, apierrors.NotFoundf("question %s not found", id))
	}

	state, err := s.Study.RecordAnswer(c.Request().Context(), id, req.Correct)
	if err != nil {
		return writeError(c, err)
	}
	s.metrics.RecordAnswer()
	return writeOK(c, state)
}

// SetDailyGoal updates the daily goal.
// POST /api/v1/progress/goal
func (s *APIV1Service) SetDailyGoal(c echo.Context) error {
	req := &setDailyGoalRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	state, err := s.Study.SetDailyGoal(c.Request().Context(), req.DailyGoal)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, state)
}
