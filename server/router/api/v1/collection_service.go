package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/queryengine"
)

type toggleFavoriteResponse struct {
	QuestionID string `json:"questionId"`
	Favorite   bool   `json:"favorite"`
}

type folderRequest struct {
	Name string `json:"name"`
}

type tabRequest struct {
	Name string                 `json:"name"`
	Spec queryengine.FilterSpec `json:"spec"`
}

// ListFavorites returns the favorite questions in the order they were added.
// GET /api/v1/favorites
func (s *APIV1Service) ListFavorites(c echo.Context) error {
	return writeOK(c, listQuestionsResponse{
		Total:     len(s.Study.ListFavoriteIDs()),
		Questions: s.Study.ListFavoriteQuestions(),
	})
}

// ToggleFavorite flips a question's favorite flag.
// POST /api/v1/favorites/:id/toggle
func (s *APIV1Service) ToggleFavorite(c echo.Context) error {
	favorite, err := s.Study.ToggleFavorite(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, toggleFavoriteResponse{QuestionID: c.Param("id"), Favorite: favorite})
}

// ListFolders lists all folders.
// GET /api/v1/folders
func (s *APIV1Service) ListFolders(c echo.Context) error {
	return writeOK(c, s.Study.ListFolders())
}

// CreateFolder creates a folder.
// POST /api/v1/folders
func (s *APIV1Service) CreateFolder(c echo.Context) error {
	req := &folderRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	folder, err := s.Study.CreateFolder(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, folder)
}

// RenameFolder renames a folder.
// PATCH /api/v1/folders/:uid
func (s *APIV1Service) RenameFolder(c echo.Context) error {
	req := &folderRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	folder, err := s.Study.RenameFolder(c.Request().Context(), c.Param("uid"), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, folder)
}

// DeleteFolder deletes a folder.
// DELETE /api/v1/folders/:uid
func (s *APIV1Service) DeleteFolder(c echo.Context) error {
	if err := s.Study.DeleteFolder(c.Request().Context(), c.Param("uid")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFolderQuestions returns a folder's questions.
// GET /api/v1/folders/:uid/questions
func (s *APIV1Service) ListFolderQuestions(c echo.Context) error {
	questions, err := s.Study.FolderQuestions(c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, listQuestionsResponse{Total: len(questions), Questions: questions})
}

// AddToFolder adds a question to a folder.
// POST /api/v1/folders/:uid/questions/:id
func (s *APIV1Service) AddToFolder(c echo.Context) error {
	folder, err := s.Study.AddToFolder(c.Request().Context(), c.Param("uid"), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, folder)
}

// RemoveFromFolder removes a question from a folder.
// DELETE /api/v1/folders/:uid/questions/:id
func (s *APIV1Service) RemoveFromFolder(c echo.Context) error {
	folder, err := s.Study.RemoveFromFolder(c.Request().Context(), c.Param("uid"), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, folder)
}

// ListTabs lists the saved custom tabs.
// GET /api/v1/tabs
func (s *APIV1Service) ListTabs(c echo.Context) error {
	return writeOK(c, s.Study.ListTabs())
}

// CreateTab saves a named filter specification as a tab.
// POST /api/v1/tabs
func (s *APIV1Service) CreateTab(c echo.Context) error {
	req := &tabRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	tab, err := s.Study.CreateTab(c.Request().Context(), req.Name, req.Spec)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, tab)
}

// UpdateTab updates a tab's name and filter specification.
// PATCH /api/v1/tabs/:uid
func (s *APIV1Service) UpdateTab(c echo.Context) error {
	req := &tabRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	tab, err := s.Study.UpdateTab(c.Request().Context(), c.Param("uid"), req.Name, req.Spec)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, tab)
}

// DeleteTab deletes a tab.
// DELETE /api/v1/tabs/:uid
func (s *APIV1Service) DeleteTab(c echo.Context) error {
	if err := s.Study.DeleteTab(c.Request().Context(), c.Param("uid")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSearchHistory returns recent searches, newest first.
// GET /api/v1/history
func (s *APIV1Service) ListSearchHistory(c echo.Context) error {
	return writeOK(c, s.Study.ListSearchHistory())
}

// ClearSearchHistory drops the search history.
// DELETE /api/v1/history
func (s *APIV1Service) ClearSearchHistory(c echo.Context) error {
	if err := s.Study.ClearSearchHistory(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
