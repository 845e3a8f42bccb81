// Package server assembles the HTTP surface of the study server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/server/auth"
	apiv1 "github.com/dentkao/dentkao/server/router/api/v1"
	"github.com/dentkao/dentkao/server/router/rss"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/store"
)

// Server is the study server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
	study      *study.Service
}

// NewServer wires the API and RSS routers onto a fresh echo instance.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store, studyService *study.Service) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	s := &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
		study:      studyService,
	}

	secret := p.Secret
	if secret == "" {
		generated, err := auth.LoadOrCreateSecret(ctx, st)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load signing secret")
		}
		secret = generated
	}
	authManager := auth.NewManager(st, secret)

	apiv1.NewAPIV1Service(p, st, studyService, authManager).Register(e)
	rss.NewRSSService(p, studyService).RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return s, nil
}

// Start serves HTTP with h2c so clients may speak cleartext HTTP/2.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           h2c.NewHandler(s.echoServer, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	slog.Info("server started", slog.String("address", address))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to serve")
	}
	return nil
}

// Shutdown flushes study state, stops the HTTP server, and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.study.Flush(ctx); err != nil {
		slog.Error("failed to flush study state", slog.String("error", err.Error()))
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
		}
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("dentkao stopped properly")
}
