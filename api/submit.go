package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/runs/coordinator"
)

const (
	maxBodySize  = 1024 * 1024 // 1 MB
	maxRuleCount = 100
	maxKindLen   = 50
)

// ErrorResponse defines the JSON structure for error responses
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// submitRequest defines the expected payload for a validation run.
type submitRequest struct {
	Rules []rules.Encoded `json:"rules"`
}

// RunResponse defines the JSON response returned for a validation run.
type RunResponse struct {
	RunID   string             `json:"run_id"`
	Status  string             `json:"status"`
	Results []rules.RuleResult `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// NewSubmitHandler returns an HTTP handler that processes run submissions.
//
// In synchronous mode the run reaches a final state before the response is
// written; in async mode the response carries the submitted status and the
// caller polls. A rejected run is a 200: a business veto is a valid answer
// to the question the caller asked, not a transport error.
func NewSubmitHandler(coord coordinator.Coordinator, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Limit request body size - this will cause Decode to fail if exceeded
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Check if the error is due to request size limit
			if strings.Contains(err.Error(), "http: request body too large") {
				respondWithError(w, errors.NewValidationError("request body too large", map[string]any{
					"max_size_bytes": maxBodySize,
				}), lg)
				return
			}

			// Other JSON parsing errors
			respondWithError(w, errors.NewValidationError("invalid JSON payload", map[string]any{
				"error": err.Error(),
			}), lg)
			return
		}

		if len(req.Rules) > maxRuleCount {
			respondWithError(w, errors.NewValidationError("too many rules in one run", map[string]any{
				"max_rules":    maxRuleCount,
				"actual_rules": len(req.Rules),
			}), lg)
			return
		}

		for i, spec := range req.Rules {
			if spec.RuleKind == "" {
				respondWithError(w, errors.NewValidationError("rule kind is required", map[string]any{
					"position": i,
				}), lg)
				return
			}
			if len(spec.RuleKind) > maxKindLen {
				respondWithError(w, errors.NewValidationError("rule kind too long", map[string]any{
					"position":   i,
					"max_length": maxKindLen,
				}), lg)
				return
			}
		}

		run, err := coord.SubmitRun(r.Context(), req.Rules)
		if err != nil {
			if dispatchErr, ok := errors.IsDispatchError(err); ok {
				respondWithError(w, dispatchErr, lg)
			} else {
				respondWithError(w, errors.NewInternalError(err.Error()), lg)
			}
			return
		}

		resp := RunResponse{
			RunID:   run.ID,
			Status:  run.Status.String(),
			Results: run.Results,
			Error:   run.Error,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			respondWithError(w, errors.NewInternalError("failed to encode response"), lg)
		}
	}
}

// respondWithError sends a structured error response
func respondWithError(w http.ResponseWriter, dispatchErr *errors.DispatchError, lg *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dispatchErr.Code)

	errorResp := ErrorResponse{
		Error:   dispatchErr.Message,
		Type:    string(dispatchErr.Type),
		Details: dispatchErr.Details,
	}

	lg.Error("HTTP error response", map[string]any{
		"error_type":    string(dispatchErr.Type),
		"error_message": dispatchErr.Message,
		"status_code":   dispatchErr.Code,
		"error_details": dispatchErr.Details,
	})

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		// Headers and possibly a partial body are already written, so
		// there is no graceful recovery. Log and move on.
		lg.Error("failed to encode error response", map[string]any{
			"error_type": string(dispatchErr.Type),
		})
	}
}
