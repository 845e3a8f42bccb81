// Package markdown renders study-note markdown into HTML for the API layer.
package markdown

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service converts markdown content to HTML.
type Service interface {
	Render(content string) (string, error)
}

type service struct {
	md goldmark.Markdown
}

// Option configures the markdown service.
type Option func(*config)

type config struct {
	hardWraps bool
}

// WithHardWraps renders single newlines as <br>, matching how notes are
// written in a plain textarea.
func WithHardWraps() Option {
	return func(c *config) {
		c.hardWraps = true
	}
}

// NewService creates a markdown service with GFM tables, strikethrough and
// autolinks enabled. Raw HTML in the source is escaped, not passed through.
func NewService(opts ...Option) Service {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	rendererOptions := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
	}
	if cfg.hardWraps {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithHardWraps()))
	}

	return &service{
		md: goldmark.New(rendererOptions...),
	}
}

// Render converts markdown content to HTML.
func (s *service) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}
