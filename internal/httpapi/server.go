// Package httpapi implements the status endpoint exposed to the load
// balancer: GET and HEAD at a configured location, query string
// validation, and exact response-header discipline (Content-Length on
// HEAD, Connection: close when keep_alive is false, the RSCheck/<version>
// Server identification).
//
// gin is only the router and middleware chain here, never the response
// renderer: every byte of the GET/HEAD body and headers is written
// directly against gin.Context.Writer so the wire format is exact.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rscheck/rscheck/internal/aggregator"
)

// Version is reported in the Server response header.
const Version = "1.0.0"

// Options configures the HTTP server.
type Options struct {
	Address      string
	Location     string
	KeepAlive    bool
	ErrorMessage bool
}

// Server is the status-endpoint HTTP server.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
}

// New builds a Server that answers GET/HEAD at opts.Location by calling
// agg.RunQuery and agg.Snapshot, and 404s every other path.
func New(agg *aggregator.Aggregator, opts Options, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(slogRequestLogger(logger))

	h := &handler{agg: agg, opts: opts}
	engine.GET(opts.Location, h.serve)
	engine.HEAD(opts.Location, h.serve)

	httpServer := &http.Server{
		Addr:              opts.Address,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: httpServer, engine: engine}
}

// Engine exposes the underlying router, for tests that want to drive
// requests with httptest without a real listener.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks until the server stops or fails.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// slogRequestLogger logs each request's method, path, status, and latency.
func slogRequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if logger != nil {
			logger.Debug("http request",
				"method", method,
				"path", path,
				"status", c.Writer.Status(),
				"latency_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}
