// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/buildlab/internal/domain/model"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Submit runs a request on the worker pool. A full queue returns
	// model.ErrBackpressure.
	Submit(ctx context.Context, kind model.JobKind, prompt string) (any, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	buildsHandler *BuildsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		buildsHandler: NewBuildsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/builds", MetricsMiddleware(RequestIDMiddleware(s.buildsHandler.HandleBuild), "builds"))
	mux.HandleFunc("/builds/match", MetricsMiddleware(RequestIDMiddleware(s.buildsHandler.HandleMatch), "builds_match"))
}

// buildRequest is the body of POST /builds and POST /builds/match.
type buildRequest struct {
	Prompt string `json:"prompt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as the {error, details} object.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), model.NewFailure(err))
}

// statusFor maps pipeline error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrBackpressure):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrUpstreamData), errors.Is(err, model.ErrOracle):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
