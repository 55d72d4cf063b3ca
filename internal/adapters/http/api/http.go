// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadmetrics/attain/internal/adapters/repository"
	"github.com/acadmetrics/attain/internal/domain/attainment"
	"github.com/acadmetrics/attain/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Tier queries.
	StudentOutcome(ctx context.Context, studentID, outcomeID, courseID string) (float64, error)
	CourseOutcome(ctx context.Context, outcomeID, courseID, sectionID string) (types.CourseOutcomeResult, error)
	DirectProgramOutcome(ctx context.Context, poID string) (float64, error)
	OverallProgramOutcome(ctx context.Context, poID string) (float64, error)
	OverallProgramOutcomeWeighted(ctx context.Context, poID string, directPct, indirectPct float64) (float64, error)

	// Orchestrated summaries.
	ProgramSummary(ctx context.Context, programID string) (types.ProgramSummary, error)
	CourseSummary(ctx context.Context, courseID string) (types.CourseSummary, error)

	// The single mutation this service accepts.
	SetIndirectAttainment(ctx context.Context, poID string, value float64) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	attainmentHandler *AttainmentHandler
	summaryHandler    *SummaryHandler
	indirectHandler   *IndirectHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		attainmentHandler: NewAttainmentHandler(deps),
		summaryHandler:    NewSummaryHandler(deps),
		indirectHandler:   NewIndirectHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/attainment", MetricsMiddleware(s.attainmentHandler.HandleGetAttainment, "attainment"))
	mux.HandleFunc("/programs/", MetricsMiddleware(s.summaryHandler.HandleProgramSummary, "program_summary"))
	mux.HandleFunc("/courses/", MetricsMiddleware(s.summaryHandler.HandleCourseSummary, "course_summary"))
	mux.HandleFunc("/program-outcomes/", MetricsMiddleware(s.indirectHandler.HandlePutIndirect, "indirect"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// writeComputeError translates engine and repository errors into HTTP
// responses. Not-found of a requested entity maps to 404, a data-graph
// failure to 500; the failed value is never reported as zero.
func writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attainment.ErrComputation):
		writeError(w, http.StatusInternalServerError, "computation_failed", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, attainment.ErrCourseMismatch):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
