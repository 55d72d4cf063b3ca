// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"
)

// SummaryHandler handles orchestrated program and course summaries.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// pathID extracts the id from paths shaped like /prefix/{id}/suffix.
func pathID(path, prefix, suffix string) (string, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, suffix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("%w: id", ErrMissingParameter)
	}
	return rest, nil
}

// HandleProgramSummary handles GET /programs/{id}/summary requests.
func (h *SummaryHandler) HandleProgramSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/summary") {
		http.NotFound(w, r)
		return
	}
	id, err := pathID(r.URL.Path, "/programs/", "/summary")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}
	summary, err := h.deps.ProgramSummary(r.Context(), id)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleCourseSummary handles GET /courses/{id}/summary requests.
func (h *SummaryHandler) HandleCourseSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/summary") {
		http.NotFound(w, r)
		return
	}
	id, err := pathID(r.URL.Path, "/courses/", "/summary")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}
	summary, err := h.deps.CourseSummary(r.Context(), id)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
