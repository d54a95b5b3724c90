// Package api exposes the parser pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/metrics"
	"github.com/samvad-hq/position-parser/internal/pipeline"
)

// EventStreamer runs one pipeline and streams its events.
type EventStreamer interface {
	Stream(ctx context.Context, urls []string) <-chan domain.Event
}

// CacheClearer empties the response cache.
type CacheClearer interface {
	Clear() int
}

// Options configures authentication and CORS.
type Options struct {
	APIKey         string
	AllowedOrigins []string
}

// Server wires HTTP handlers to the pipeline and cache.
type Server struct {
	router   chi.Router
	pipeline EventStreamer
	cache    CacheClearer
	log      logger.Logger
}

type parseRequest struct {
	URLs []string `json:"urls"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(streamer EventStreamer, cache CacheClearer, opts Options, log logger.Logger) *Server {
	s := &Server{
		pipeline: streamer,
		cache:    cache,
		log:      logger.Ensure(log),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.log))
	r.Use(recoverMiddleware(s.log))
	r.Use(corsMiddleware(opts.AllowedOrigins))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if opts.APIKey != "" {
			r.Use(apiKeyMiddleware(opts.APIKey))
		}
		r.Post("/parse", s.parse)
		r.Post("/clear-cache", s.clearCache)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	urls, err := pipeline.ValidateURLs(req.URLs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for evt := range s.pipeline.Stream(r.Context(), urls) {
		if err := writeEvent(w, evt); err != nil {
			s.log.DebugObj("sse write failed", "sse_error", map[string]any{
				"request_id": RequestID(r.Context()),
				"error":      err.Error(),
			})
			continue
		}
		flusher.Flush()
	}
}

func (s *Server) clearCache(w http.ResponseWriter, _ *http.Request) {
	n := s.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cleared %d cached responses", n),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorObj("write JSON failed", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
