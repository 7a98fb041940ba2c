package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/fr0stylo/lacquer/internal/observability"
)

const defaultBodyLimit = "32M"

// RouteRegister registers Echo routes.
type RouteRegister interface {
	RegisterRoutes(s *echo.Echo)
}

// Options tunes the HTTP server.
type Options struct {
	ServiceName string
	// BodyLimit caps request bodies, in echo's size notation ("32M").
	BodyLimit string
}

// Server holds the Echo instance.
type Server struct {
	e *echo.Echo
}

// New creates a new server instance.
func New(log *slog.Logger, opts Options) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	if opts.BodyLimit == "" {
		opts.BodyLimit = defaultBodyLimit
	}

	e.Use(slogecho.NewWithConfig(log, slogecho.Config{
		WithRequestID: true,
		Filters: []slogecho.Filter{
			slogecho.IgnorePath("/healthz"),
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(observability.EchoMiddleware(opts.ServiceName))
	e.Use(observability.EchoSpanEnrichmentMiddleware())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	return &Server{
		e: e,
	}
}

// RegisterRouter attaches a route registrar.
func (s *Server) RegisterRouter(r RouteRegister) {
	r.RegisterRoutes(s.e)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start runs the HTTP server.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
