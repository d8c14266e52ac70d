// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpapi exposes the engine over HTTP. The surface mirrors the
// data the CLI prints: ranked search, classification, model info,
// training, and a health snapshot, all as JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rijwolshakya09/IR-Test/internal/classify"
	"github.com/rijwolshakya09/IR-Test/internal/engine"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// Fallbacks for a zero ServerConfig.
const (
	defaultAddr         = ":8000"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Server serves the HTTP API for one engine.
type Server struct {
	engine *engine.Engine
	cfg    types.ServerConfig
	logger *slog.Logger
}

// Option adjusts a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a Server over an engine. The engine's lifecycle stays with
// the caller.
func New(e *engine.Engine, cfg types.ServerConfig, opts ...Option) *Server {
	s := &Server{
		engine: e,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table wrapped in the CORS and request-logging
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /classify", s.handleClassify)
	mux.HandleFunc("GET /model-info", s.handleModelInfo)
	mux.HandleFunc("POST /train-models", s.handleTrainModels)
	return corsMiddleware(s.logRequests(mux))
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully, draining in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}
	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http api listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		engine.Stats
	}{Status: "ok", Stats: s.engine.Stats()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.engine.Search(r.Context(),
		q.Get("query"),
		intParam(q.Get("page")),
		intParam(q.Get("size")),
		types.SortBy(q.Get("sort_by")),
		types.SortOrder(q.Get("sort_order")),
	)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		ModelType string `json:"model_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return
	}

	result, err := s.engine.Classify(req.Text, types.Algorithm(req.ModelType))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.ModelInfo(types.Algorithm(r.URL.Query().Get("model_type")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTrainModels(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.engine.TrainModels(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string                  `json:"message"`
		Results []types.TrainingSummary `json:"results"`
	}{Message: "Models trained successfully", Results: summaries})
}

// writeError maps engine error kinds onto status codes. Anything
// unrecognized is a 500 and gets logged; the well-known kinds are the
// caller's fault and just get reported.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrEmptyText), errors.Is(err, classify.ErrUnknownAlgorithm):
		status = http.StatusBadRequest
	case errors.Is(err, classify.ErrModelNotTrained):
		status = http.StatusConflict
	case errors.Is(err, classify.ErrInsufficientTrainingData), errors.Is(err, classify.ErrUnknownCategory):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// intParam parses a numeric query parameter. Anything unparseable comes
// back zero and lets the engine clamp it to its default.
func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// statusWriter records the status code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
