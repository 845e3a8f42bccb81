package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dentkao/dentkao/server/internal/errors"
)

type addFlashcardRequest struct {
	QuestionID string `json:"questionId"`
}

type reviewFlashcardRequest struct {
	Quality int `json:"quality"`
}

// ListFlashcards lists every flashcard.
// GET /api/v1/flashcards
func (s *APIV1Service) ListFlashcards(c echo.Context) error {
	return writeOK(c, s.Study.ListFlashcards())
}

// ListDueFlashcards lists the cards due for review now.
// GET /api/v1/flashcards/due
func (s *APIV1Service) ListDueFlashcards(c echo.Context) error {
	return writeOK(c, s.Study.DueFlashcards())
}

// AddFlashcard creates a card for a question.
// POST /api/v1/flashcards
func (s *APIV1Service) AddFlashcard(c echo.Context) error {
	req := &addFlashcardRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	card, err := s.Study.AddFlashcard(c.Request().Context(), req.QuestionID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, card)
}

// ReviewFlashcard grades a review and reschedules the card.
// POST /api/v1/flashcards/:uid/review
func (s *APIV1Service) ReviewFlashcard(c echo.Context) error {
	req := &reviewFlashcardRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	card, err := s.Study.ReviewFlashcard(c.Request().Context(), c.Param("uid"), req.Quality)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, card)
}

// RemoveFlashcard deletes a card.
// DELETE /api/v1/flashcards/:uid
func (s *APIV1Service) RemoveFlashcard(c echo.Context) error {
	if err := s.Study.RemoveFlashcard(c.Request().Context(), c.Param("uid")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
