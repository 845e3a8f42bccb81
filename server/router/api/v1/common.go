package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/internal/observability"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// writeError maps a service error onto its HTTP status. Non-status errors
// become opaque internal errors so store internals never leak to clients.
func writeError(c echo.Context, err error) error {
	statusErr, ok := err.(*apierrors.StatusError)
	if !ok {
		statusErr = apierrors.Internal("internal error", err)
	}
	if statusErr.Code == apierrors.ErrCodeInternal {
		if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
			reqCtx.Error("request failed", err)
		} else {
			slog.Error("request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
		}
	}
	return c.JSON(statusErr.HTTPStatus(), errorResponse{
		Code:    statusErr.Code,
		Message: statusErr.Message,
	})
}

// writeOK writes a 200 JSON response.
func writeOK(c echo.Context, body any) error {
	return c.JSON(http.StatusOK, body)
}
