package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/celebchat/persona-agent/internal/repository"
	"github.com/celebchat/persona-agent/internal/session"
)

// version reported by the info endpoint.
const version = "1.0.0"

// Invoker runs one conversation turn on a session.
type Invoker interface {
	Send(ctx context.Context, sess *session.Session, prompt string) (string, error)
}

// Options configures the HTTP listener.
type Options struct {
	Host string
	Port int

	// PersonaName is reported by the health and info endpoints.
	PersonaName string
}

// Server is the REST surface over the session registry and the agent.
type Server struct {
	options  Options
	server   *http.Server
	registry *session.Registry
	invoker  Invoker
	archive  repository.Archive // may be nil
	logger   zerolog.Logger
}

// New creates the HTTP server. archive may be nil when transcript archiving
// is disabled.
func New(options Options, registry *session.Registry, invoker Invoker, archive repository.Archive, logger zerolog.Logger) (*Server, error) {
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}

	if registry == nil {
		return nil, fmt.Errorf("server: session registry is required")
	}
	if invoker == nil {
		return nil, fmt.Errorf("server: invoker is required")
	}

	return &Server{
		options:  options,
		registry: registry,
		invoker:  invoker,
		archive:  archive,
		logger:   logger,
	}, nil
}

// Handler returns the route table. Exposed so tests can drive the server
// through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /sessions/{user_id}", s.handleSessions)
	mux.HandleFunc("GET /sessions/{user_id}/{session_id}/transcript", s.handleTranscript)
	mux.HandleFunc("DELETE /sessions/{user_id}/{session_id}", s.handleDeleteSession)

	return mux
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.Handler(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Str("persona", s.options.PersonaName).
		Msg("starting http server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}

	return nil
}

// Stop gracefully shuts the server down, waiting up to 5s for in-flight
// requests.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	return nil
}
