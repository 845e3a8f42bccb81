package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
)

type listSubjectsResponse struct {
	Subjects []*corpus.Subject `json:"subjects"`
}

// ListSubjects returns the subject table with per-subject question counts.
// GET /api/v1/subjects
func (s *APIV1Service) ListSubjects(c echo.Context) error {
	return writeOK(c, listSubjectsResponse{Subjects: s.Study.Corpus().Subjects()})
}

// ListSubjectQuestions returns one subject's questions.
// GET /api/v1/subjects/:id/questions
func (s *APIV1Service) ListSubjectQuestions(c echo.Context) error {
	id := c.Param("id")
	all, ok := s.Study.Corpus().SubjectQuestions(id)
	if !ok {
		return writeError(c, apierrors.NotFoundf("subject %q not found", id))
	}
	questions, total := paginate(c, all)
	return writeOK(c, listQuestionsResponse{Total: total, Questions: questions})
}
