package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/runs/coordinator"
)

// RunStatusResponse represents a lightweight status response
type RunStatusResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// NewRunHandler returns the full run record, including results.
func NewRunHandler(coord coordinator.Coordinator, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		if runID == "" {
			respondWithError(w, errors.NewValidationError("run ID is required"), lg)
			return
		}

		run, err := coord.GetRun(r.Context(), runID)
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

// NewRunStatusHandler creates a lightweight handler for run status polls.
func NewRunStatusHandler(coord coordinator.Coordinator, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		if runID == "" {
			respondWithError(w, errors.NewValidationError("run ID is required"), lg)
			return
		}

		status, err := coord.GetRunStatus(r.Context(), runID)
		if err != nil {
			if dispatchErr, ok := errors.IsDispatchError(err); ok {
				respondWithError(w, dispatchErr, lg)
			} else {
				respondWithError(w, errors.NewInternalError(err.Error()), lg)
			}
			return
		}

		resp := RunStatusResponse{
			RunID:  runID,
			Status: status.String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			respondWithError(w, errors.NewInternalError("failed to encode response"), lg)
		}
	}
}
