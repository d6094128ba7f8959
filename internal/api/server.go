package api

import (
	"context"
	"net/http"
	"time"
)

// Server represents the API server.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server around the configured handlers.
func NewServer(h *Handlers) *Server {
	return &Server{handler: SetupRoutes(h)}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// A sync holds the request open while three upstream fetches
		// run, so the write timeout is sized to cover a slow sync.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
