package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/service/study"
)

type upsertNoteRequest struct {
	Content string `json:"content"`
}

// noteResponse carries a note together with its rendered HTML.
type noteResponse struct {
	*study.Note
	HTML string `json:"html"`
}

// ListNotes lists every note with rendered content.
// GET /api/v1/notes
func (s *APIV1Service) ListNotes(c echo.Context) error {
	notes := s.Study.ListNotes()
	resp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		rendered, err := s.MarkdownService.Render(note.Content)
		if err != nil {
			return writeError(c, apierrors.Internal("failed to render note", err))
		}
		resp = append(resp, noteResponse{Note: note, HTML: rendered})
	}
	return writeOK(c, resp)
}

// GetNote returns one question's note with rendered content.
// GET /api/v1/notes/:id
func (s *APIV1Service) GetNote(c echo.Context) error {
	note := s.Study.GetNote(c.Param("id"))
	if note == nil {
		return writeError(c, apierrors.NotFoundf("no note for question %s", corpus.NormalizeID(c.Param("id"))))
	}
	rendered, err := s.MarkdownService.Render(note.Content)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to render note", err))
	}
	return writeOK(c, noteResponse{Note: note, HTML: rendered})
}

// UpsertNote writes a question's note. Empty content deletes it.
// PUT /api/v1/notes/:id
func (s *APIV1Service) UpsertNote(c echo.Context) error {
	req := &upsertNoteRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	note, err := s.Study.UpsertNote(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return writeError(c, err)
	}
	if note == nil {
		return c.NoContent(http.StatusNoContent)
	}
	rendered, err := s.MarkdownService.Render(note.Content)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to render note", err))
	}
	return writeOK(c, noteResponse{Note: note, HTML: rendered})
}

// DeleteNote removes a question's note.
// DELETE /api/v1/notes/:id
func (s *APIV1Service) DeleteNote(c echo.Context) error {
	if err := s.Study.DeleteNote(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
