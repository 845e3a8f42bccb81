package v1

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/internal/observability"
)

const (
	// ThumbnailCacheFolder is the folder name where the thumbnail images are stored.
	ThumbnailCacheFolder = ".thumbnail_cache"
	// thumbnailWidth is the fixed width of generated thumbnails; height keeps
	// the aspect ratio.
	thumbnailWidth = 512
)

// GetFigure serves a question figure from the figures directory. With
// ?thumbnail=true a cached 512px thumbnail is served instead of the
// original.
// GET /api/v1/figures/:name
func (s *APIV1Service) GetFigure(c echo.Context) error {
	name := c.Param("name")
	if !validateFigureName(name) {
		return writeError(c, apierrors.InvalidArgumentf("invalid figure name %q", name))
	}

	figurePath := filepath.Join(s.Profile.FiguresDir, name)
	if _, err := os.Stat(figurePath); err != nil {
		return writeError(c, apierrors.NotFoundf("figure %s not found", name))
	}

	if thumbnail, _ := strconv.ParseBool(c.QueryParam("thumbnail")); thumbnail {
		thumbnailPath, err := s.getOrGenerateThumbnail(c, figurePath, name)
		if err == nil {
			return c.File(thumbnailPath)
		}
		// Thumbnail generation is best-effort; fall back to the original.
		if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
			reqCtx.Warn("failed to generate thumbnail", slog.String("figure", name), slog.String("error", err.Error()))
		}
	}
	return c.File(figurePath)
}

// getOrGenerateThumbnail returns the cached thumbnail path, generating it
// under the semaphore on first access.
func (s *APIV1Service) getOrGenerateThumbnail(c echo.Context, figurePath, name string) (string, error) {
	cacheDir := filepath.Join(s.Profile.Data, ThumbnailCacheFolder)
	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "failed to create thumbnail cache folder")
	}
	thumbnailPath := filepath.Join(cacheDir, name)
	if _, err := os.Stat(thumbnailPath); err == nil {
		return thumbnailPath, nil
	}

	// Limit concurrent thumbnail generation, decoding full-size scans is
	// memory hungry.
	ctx := c.Request().Context()
	if err := s.thumbnailSemaphore.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "failed to acquire thumbnail semaphore")
	}
	defer s.thumbnailSemaphore.Release(1)

	img, err := imaging.Open(figurePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode figure")
	}
	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumbnail, thumbnailPath); err != nil {
		return "", errors.Wrap(err, "failed to save thumbnail")
	}
	return thumbnailPath, nil
}

// validateFigureName rejects path traversal and nested paths.
func validateFigureName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
