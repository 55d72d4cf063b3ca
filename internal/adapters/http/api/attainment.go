// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/acadmetrics/attain/internal/domain/types"
)

// Query type selectors accepted by GET /attainment.
const (
	queryStudentCO = "student-co"
	queryCourseCO  = "course-co"
	queryDirectPO  = "direct-po"
	queryOverallPO = "overall-po"
)

// AttainmentHandler handles single-value attainment queries.
type AttainmentHandler struct {
	deps Dependencies
}

// NewAttainmentHandler creates a new attainment query handler.
func NewAttainmentHandler(deps Dependencies) *AttainmentHandler {
	return &AttainmentHandler{deps: deps}
}

type percentageResponse struct {
	Percentage float64 `json:"percentage"`
}

type levelResponse struct {
	Level             types.AttainmentLevel `json:"level"`
	PercentageMeeting float64               `json:"percentage_meeting_target"`
}

type attainmentValueResponse struct {
	Attainment float64 `json:"attainment"`
}

// HandleGetAttainment handles GET /attainment?type=... requests, dispatching
// on the type selector. A missing required id is rejected before any
// computation starts.
func (h *AttainmentHandler) HandleGetAttainment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	switch q.Get("type") {
	case queryStudentCO:
		h.handleStudentCO(w, r)
	case queryCourseCO:
		h.handleCourseCO(w, r)
	case queryDirectPO:
		h.handleDirectPO(w, r)
	case queryOverallPO:
		h.handleOverallPO(w, r)
	case "":
		writeError(w, http.StatusBadRequest, "missing_parameter", fmt.Errorf("%w: type", ErrMissingParameter))
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown type %q", ErrBadRequest, q.Get("type")))
	}
}

// requireParams collects the named query parameters, reporting the first
// one that is absent.
func requireParams(r *http.Request, names ...string) ([]string, error) {
	vals := make([]string, len(names))
	for i, name := range names {
		v := r.URL.Query().Get(name)
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
		vals[i] = v
	}
	return vals, nil
}

func (h *AttainmentHandler) handleStudentCO(w http.ResponseWriter, r *http.Request) {
	vals, err := requireParams(r, "student_id", "course_id", "co_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}
	pct, err := h.deps.StudentOutcome(r.Context(), vals[0], vals[2], vals[1])
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, percentageResponse{Percentage: pct})
}

func (h *AttainmentHandler) handleCourseCO(w http.ResponseWriter, r *http.Request) {
	vals, err := requireParams(r, "course_id", "co_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}
	sectionID := r.URL.Query().Get("section_id") // optional narrowing
	res, err := h.deps.CourseOutcome(r.Context(), vals[1], vals[0], sectionID)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, levelResponse{Level: res.Level, PercentageMeeting: res.PercentageMeeting})
}

func (h *AttainmentHandler) handleDirectPO(w http.ResponseWriter, r *http.Request) {
	vals, err := requireParams(r, "po_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}
	v, err := h.deps.DirectProgramOutcome(r.Context(), vals[0])
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attainmentValueResponse{Attainment: v})
}

func (h *AttainmentHandler) handleOverallPO(w http.ResponseWriter, r *http.Request) {
	vals, err := requireParams(r, "po_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}

	q := r.URL.Query()
	directStr, indirectStr := q.Get("direct_weight"), q.Get("indirect_weight")
	var v float64
	switch {
	case directStr == "" && indirectStr == "":
		v, err = h.deps.OverallProgramOutcome(r.Context(), vals[0])
	case directStr != "" && indirectStr != "":
		var direct, indirect float64
		direct, err = strconv.ParseFloat(directStr, 64)
		if err == nil {
			indirect, err = strconv.ParseFloat(indirectStr, 64)
		}
		if err != nil || direct < 0 || indirect < 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: weights must be non-negative numbers", ErrBadRequest))
			return
		}
		v, err = h.deps.OverallProgramOutcomeWeighted(r.Context(), vals[0], direct, indirect)
	default:
		writeError(w, http.StatusBadRequest, "missing_parameter",
			fmt.Errorf("%w: direct_weight and indirect_weight must be given together", ErrMissingParameter))
		return
	}
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attainmentValueResponse{Attainment: v})
}
