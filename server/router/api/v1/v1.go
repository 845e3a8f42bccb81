// Package v1 exposes the study server's REST API.
package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/plugin/markdown"
	"github.com/dentkao/dentkao/server/auth"
	"github.com/dentkao/dentkao/internal/observability"
	"github.com/dentkao/dentkao/server/middleware"
	"github.com/dentkao/dentkao/server/service/question"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/store"
)

// APIV1Service wires the study service into the HTTP surface.
type APIV1Service struct {
	Profile         *profile.Profile
	Store           *store.Store
	Study           *study.Service
	AuthManager     *auth.Manager
	MarkdownService markdown.Service

	highlighter *question.Highlighter
	rateLimiter *middleware.RateLimiter
	metrics     *observability.Metrics

	// thumbnailSemaphore limits concurrent thumbnail generation to prevent memory exhaustion
	thumbnailSemaphore *semaphore.Weighted
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, studyService *study.Service, authManager *auth.Manager) *APIV1Service {
	return &APIV1Service{
		Profile:            p,
		Store:              st,
		Study:              studyService,
		AuthManager:        authManager,
		MarkdownService:    markdown.NewService(markdown.WithHardWraps()),
		highlighter:        question.NewHighlighter(),
		rateLimiter:        middleware.NewRateLimiter(20, 40),
		metrics:            observability.GlobalMetrics(),
		thumbnailSemaphore: semaphore.NewWeighted(3), // Limit to 3 concurrent thumbnail generations
	}
}

// Register mounts every route under /api/v1.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")
	g.Use(s.requestContextMiddleware())
	g.Use(s.rateLimiter.Middleware())
	g.Use(s.authMiddleware())

	// Auth.
	g.POST("/auth/signin", s.SignIn)
	g.GET("/auth/status", s.AuthStatus)
	g.POST("/auth/password", s.SetPassword)
	g.DELETE("/auth/password", s.RemovePassword)

	// Corpus and search.
	g.GET("/corpus/metadata", s.GetCorpusMetadata)
	g.GET("/questions", s.ListQuestions)
	g.GET("/questions/daily", s.GetDailyPick)
	g.GET("/questions/:id", s.GetQuestion)
	g.GET("/search", s.Search)
	g.GET("/subjects", s.ListSubjects)
	g.GET("/subjects/:id/questions", s.ListSubjectQuestions)
	g.POST("/feed", s.ResolveFeed)

	// Progress.
	g.GET("/progress", s.GetProgress)
	g.GET("/progress/summary", s.GetProgressSummary)
	g.POST("/progress/answers", s.RecordAnswer)
	g.POST("/progress/goal", s.SetDailyGoal)

	// Collections.
	g.GET("/favorites", s.ListFavorites)
	g.POST("/favorites/:id/toggle", s.ToggleFavorite)
	g.GET("/folders", s.ListFolders)
	g.POST("/folders", s.CreateFolder)
	g.PATCH("/folders/:uid", s.RenameFolder)
	g.DELETE("/folders/:uid", s.DeleteFolder)
	g.GET("/folders/:uid/questions", s.ListFolderQuestions)
	g.POST("/folders/:uid/questions/:id", s.AddToFolder)
	g.DELETE("/folders/:uid/questions/:id", s.RemoveFromFolder)
	g.GET("/tabs", s.ListTabs)
	g.POST("/tabs", s.CreateTab)
	g.PATCH("/tabs/:uid", s.UpdateTab)
	g.DELETE("/tabs/:uid", s.DeleteTab)
	g.GET("/history", s.ListSearchHistory)
	g.DELETE("/history", s.ClearSearchHistory)

	// Flashcards.
	g.GET("/flashcards", s.ListFlashcards)
	g.GET("/flashcards/due", s.ListDueFlashcards)
	g.POST("/flashcards", s.AddFlashcard)
	g.POST("/flashcards/:uid/review", s.ReviewFlashcard)
	g.DELETE("/flashcards/:uid", s.RemoveFlashcard)

	// Notes.
	g.GET("/notes", s.ListNotes)
	g.GET("/notes/:id", s.GetNote)
	g.PUT("/notes/:id", s.UpsertNote)
	g.DELETE("/notes/:id", s.DeleteNote)

	// Figures.
	g.GET("/figures/:name", s.GetFigure)

	// Debug.
	g.GET("/metrics", s.GetMetricsOverview)
}

// authMiddleware enforces the owner password when one is set. Sign-in and
// status stay public so a locked-out client can still reach them.
func (s *APIV1Service) authMiddleware() echo.MiddlewareFunc {
	public := map[string]bool{
		"/api/v1/auth/signin": true,
		"/api/v1/auth/status": true,
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if public[c.Path()] || !s.AuthManager.Enabled(c.Request().Context()) {
				return next(c)
			}
			token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
			if err := s.AuthManager.Authenticate(token); err != nil {
				return writeError(c, err)
			}
			return next(c)
		}
	}
}

// requestContextMiddleware attaches an observability request context and
// records basic request metrics.
func (s *APIV1Service) requestContextMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := observability.NewRequestContext(slog.Default(), c.Request().Method, c.Path())
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))

			s.metrics.RecordRequest()
			err := next(c)
			if err != nil || c.Response().Status >= http.StatusInternalServerError {
				s.metrics.RecordFailure()
			}
			return err
		}
	}
}
