// Package server constructs the HTTP servers and router used by the catalog.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPServer creates the public HTTP server listening on cfg.Port.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewPprofServer serves the default mux, where net/http/pprof registers its handlers.
func NewPprofServer(cfg config.PProfConfig) *http.Server {
	return &http.Server{
		Addr: cfg.Addr,
	}
}

// NewChiRouter creates a new Chi router with a set of
// middleware for tracing, request ID injection, structured logging, and recovery.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(otelhttp.NewMiddleware("catalog.http"))
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	return mux
}
