// Package server provides the HTTP REST API for the listing pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/events"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/sections"
	"github.com/jonathan/listing-pipeline/internal/server/middleware"
	"github.com/jonathan/listing-pipeline/internal/server/ratelimit"
)

// maxBodyBytes caps request bodies; product payloads carry spec tables and image lists.
const maxBodyBytes = 4 << 20

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds server configuration
type Config struct {
	Port         int
	Orchestrator *pipeline.Orchestrator
	// Bus feeds the event stream endpoint. It must also be a publisher of
	// the orchestrator for events to arrive.
	Bus *events.Bus
	// Boards holds section state. Nil creates an empty set.
	Boards *sections.Boards
	// Generator serves content and section requests. Nil uses templates only.
	Generator generation.Generator
	// Tokens authenticates reviewers. Nil leaves the review endpoint open.
	Tokens             *TokenService
	RateLimit          *ratelimit.Config
	SectionConcurrency int
	HealthChecks       map[string]HealthCheck
	Logger             *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer         *http.Server
	handler            http.Handler
	orch               *pipeline.Orchestrator
	bus                *events.Bus
	boards             *sections.Boards
	gen                generation.Generator
	tokens             middleware.TokenValidator
	rateLimiter        *ratelimit.Limiter
	sectionConcurrency int
	healthChecks       map[string]HealthCheck
	logger             *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("server requires an orchestrator")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		orch:               cfg.Orchestrator,
		bus:                cfg.Bus,
		boards:             cfg.Boards,
		sectionConcurrency: cfg.SectionConcurrency,
		healthChecks:       cfg.HealthChecks,
		logger:             logger,
	}
	if s.boards == nil {
		s.boards = sections.NewBoards(logger)
	}
	switch g := cfg.Generator.(type) {
	case nil:
		s.gen = generation.WithFallback(generation.FallbackGenerator{}, logger)
	case *generation.Resilient:
		s.gen = g
	default:
		s.gen = generation.WithFallback(g, logger)
	}
	if cfg.Tokens != nil {
		s.tokens = cfg.Tokens
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s.rateLimiter = ratelimit.NewLimiter(rl)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Pipeline runs
	mux.HandleFunc("POST /pipelines", s.handleCreatePipeline)
	mux.HandleFunc("GET /pipelines", s.handleListPipelines)
	mux.HandleFunc("GET /pipelines/{id}", s.handleGetPipeline)
	mux.HandleFunc("GET /pipelines/{id}/events", s.handlePipelineEvents)
	mux.HandleFunc("POST /pipelines/{id}/pause", s.handlePausePipeline)
	mux.HandleFunc("POST /pipelines/{id}/resume", s.handleResumePipeline)
	mux.HandleFunc("POST /pipelines/{id}/steps/{step}/skip", s.handleSkipStep)
	mux.Handle("POST /pipelines/{id}/review",
		middleware.RequireBearer(s.tokens)(http.HandlerFunc(s.handleReview)))

	// Content generation
	mux.HandleFunc("POST /generate-content", s.handleGenerateContent)

	// Section boards
	mux.HandleFunc("GET /products/{id}/sections/{platform}", s.handleGetSections)
	mux.HandleFunc("POST /products/{id}/sections/{platform}/sweep", s.handleSweepSections)
	mux.HandleFunc("POST /products/{id}/sections/{platform}/{section}/generate", s.handleGenerateSection)
	mux.HandleFunc("POST /products/{id}/sections/{platform}/{section}/toggle", s.handleToggleSection)

	// Reference data and checks
	mux.HandleFunc("GET /platforms", s.handleListPlatforms)
	mux.HandleFunc("GET /platforms/{platform}", s.handleGetPlatform)
	mux.HandleFunc("POST /compliance/check", s.handleComplianceCheck)

	s.handler = middleware.Logging(logger)(s.withRateLimit(s.withCORS(mux)))

	// Create HTTP server. The event stream clears its own write deadline.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work owned by the server without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.healthChecks))
	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{
		"status":     "ok",
		"reviewMode": s.orch.ReviewMode(),
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	s.jsonResponse(w, status, body)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshalBody(data, v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return data, nil
}

func unmarshalBody(data []byte, v any) error {
	if len(data) == 0 {
		return &ErrValidation{Field: "body", Message: "request body is empty"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it. Server faults are logged and
// their details withheld.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			s.errorResponse(w, status, "internal server error")
			return
		}
	}
	s.errorResponse(w, status, errorMessage(err))
}
