// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the application service.
type Dependencies interface {
	// ProcessBatch runs one pipeline pass for a validated request.
	ProcessBatch(ctx context.Context, req types.BatchRequest) (types.Result, error)

	// Defaults returns the default limit and minimum score for a kind.
	Defaults(kind types.Kind) (int, float64)

	// MaxLimit returns the per-request item cap.
	MaxLimit() int

	// Health surface.
	Ready() bool
	AIServices() map[string]bool
	SourceCount() int
	Catalog() map[string][]model.Source
}

// Server wires HTTP routes for the batch API.
type Server struct {
	batchHandler   *BatchHandler
	healthHandler  *HealthHandler
	sourcesHandler *SourcesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		batchHandler:   NewBatchHandler(deps),
		healthHandler:  NewHealthHandler(deps),
		sourcesHandler: NewSourcesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/batch/articles", MetricsMiddleware(s.batchHandler.HandleArticles, "batch_articles"))
	mux.HandleFunc("/batch/news", MetricsMiddleware(s.batchHandler.HandleNews, "batch_news"))
	mux.HandleFunc("/batch/events", MetricsMiddleware(s.batchHandler.HandleEvents, "batch_events"))
	mux.HandleFunc("/batch/sources", MetricsMiddleware(s.sourcesHandler.HandleSources, "batch_sources"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fieldErrorResponse reports a request validation failure with the offending
// field, mirroring types.FieldError.
type fieldErrorResponse struct {
	Code   string `json:"code"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeFieldError(w http.ResponseWriter, fe *types.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
		Code:   "validation_failed",
		Field:  fe.Field,
		Reason: fe.Reason,
	})
}
