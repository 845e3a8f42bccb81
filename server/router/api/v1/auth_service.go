package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dentkao/dentkao/server/internal/errors"
)

type signInRequest struct {
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string `json:"accessToken"`
}

type authStatusResponse struct {
	PasswordRequired bool `json:"passwordRequired"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

// SignIn exchanges the owner password for an access token.
// POST /api/v1/auth/signin
func (s *APIV1Service) SignIn(c echo.Context) error {
	req := &signInRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	token, err := s.AuthManager.SignIn(c.Request().Context(), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, signInResponse{AccessToken: token})
}

// AuthStatus reports whether the server requires a password.
// GET /api/v1/auth/status
func (s *APIV1Service) AuthStatus(c echo.Context) error {
	return writeOK(c, authStatusResponse{
		PasswordRequired: s.AuthManager.Enabled(c.Request().Context()),
	})
}

// SetPassword sets or replaces the owner password.
// POST /api/v1/auth/password
func (s *APIV1Service) SetPassword(c echo.Context) error {
	req := &setPasswordRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if err := s.AuthManager.SetPassword(c.Request().Context(), req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemovePassword clears the owner password, opening the server up.
// DELETE /api/v1/auth/password
func (s *APIV1Service) RemovePassword(c echo.Context) error {
	if err := s.AuthManager.RemovePassword(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
