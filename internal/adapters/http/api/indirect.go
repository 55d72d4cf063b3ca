// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acadmetrics/attain/internal/adapters/repository"
)

// validate checks request payloads against their struct tags.
var validate = validator.New() //nolint:gochecknoglobals // validator instances are meant to be shared

// IndirectHandler handles indirect-attainment updates.
type IndirectHandler struct {
	deps Dependencies
}

// NewIndirectHandler creates a new indirect-attainment handler.
func NewIndirectHandler(deps Dependencies) *IndirectHandler {
	return &IndirectHandler{deps: deps}
}

// indirectRequest is the PUT /program-outcomes/{id}/indirect payload.
// Value is a pointer so an explicit 0 passes the required check.
type indirectRequest struct {
	Value *float64 `json:"value" validate:"required,gte=0,lte=3"`
}

type indirectResponse struct {
	ProgramOutcomeID string  `json:"program_outcome_id"`
	Value            float64 `json:"value"`
}

// HandlePutIndirect handles PUT /program-outcomes/{id}/indirect requests.
// Values outside [0,3] are rejected before any mutation happens.
func (h *IndirectHandler) HandlePutIndirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut || !strings.HasSuffix(r.URL.Path, "/indirect") {
		http.NotFound(w, r)
		return
	}
	id, err := pathID(r.URL.Path, "/program-outcomes/", "/indirect")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameter", err)
		return
	}

	var req indirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() != "required" {
			writeError(w, http.StatusBadRequest, "invalid_range",
				fmt.Errorf("%w: value must lie in [0,3]", ErrInvalidRange))
			return
		}
		writeError(w, http.StatusBadRequest, "missing_parameter", fmt.Errorf("%w: value", ErrMissingParameter))
		return
	}

	if err := h.deps.SetIndirectAttainment(r.Context(), id, *req.Value); err != nil {
		if errors.Is(err, repository.ErrInvalidValue) {
			writeError(w, http.StatusBadRequest, "invalid_range", err)
			return
		}
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, indirectResponse{ProgramOutcomeID: id, Value: *req.Value})
}
