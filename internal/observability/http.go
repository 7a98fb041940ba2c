package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// EchoMiddleware returns the unified HTTP tracing middleware.
func EchoMiddleware(serviceName string) echo.MiddlewareFunc {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "lacquer"
	}
	return otelecho.Middleware(serviceName, otelecho.WithSkipper(traceSkipper))
}

// EchoSpanEnrichmentMiddleware adds request id and route to the active span and context.
func EchoSpanEnrichmentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithRequestMetadata(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID), resolvedRoute(c))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// NewHTTPClient returns a client whose requests are traced as outbound spans.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport
	if _, traced := transport.(*otelhttp.Transport); !traced {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func traceSkipper(c echo.Context) bool {
	switch strings.TrimSpace(c.Request().URL.Path) {
	case "/healthz", "/favicon.ico", "/auth/github/callback":
		return true
	default:
		return false
	}
}

func resolvedRoute(c echo.Context) string {
	route := strings.TrimSpace(c.Path())
	if route != "" {
		return route
	}
	return strings.TrimSpace(c.Request().URL.Path)
}
