// Package api exposes the analysis tools, the FFT and goal seek over HTTP.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statkit/domain/core"
	"statkit/internal"
	"statkit/internal/analysis"
	"statkit/internal/config"
	"statkit/internal/errors"
)

// Server routes API requests to the engine
type Server struct {
	router *chi.Mux
	engine *analysis.Engine
	cfg    *config.Config
	logger *internal.Logger

	mu  sync.Mutex
	srv *http.Server
}

// NewServer builds the router. A nil config uses the defaults.
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: chi.NewRouter(),
		engine: analysis.NewEngine(logger),
		cfg:    cfg,
		logger: logger.With("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tools", s.handleListTools)
	s.router.Post("/tools/{name}", s.handleRunTool)
	s.router.Post("/fft", s.handleFFT)
	s.router.Post("/goalseek", s.handleGoalSeek)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr, or on the configured address when addr is empty
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	s.logger.Info("listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()
	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a started server, waiting for open requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes to HTTP statuses. Solver failures carry no
// code of their own and are reported as unprocessable.
func statusOf(err error) int {
	if core.IsRootFindingError(err) || stderrors.Is(err, core.ErrEmptySequence) {
		return http.StatusUnprocessableEntity
	}
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeInvalidField, errors.CodeMissingData, errors.CodeTooFewCols, errors.CodeTooFewRows,
		errors.CodeReplicationInvalid, errors.CodeNotEnoughData, errors.CodeNearSingular,
		errors.CodeSingular, errors.CodeInvalidDimensions:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "malformed request body")
	}
	return nil
}
