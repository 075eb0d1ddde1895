package api

import (
	"encoding/json"
	"net/http"
	"time"

	"rule-orchestrator/config"
	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules/registry"
)

var startTime = time.Now()

// HealthResponse provides detailed health information
type HealthResponse struct {
	Status          string   `json:"status"`
	Timestamp       string   `json:"timestamp"`
	Uptime          string   `json:"uptime"`
	RegisteredKinds []string `json:"registered_kinds"`
	Version         string   `json:"version,omitempty"`
}

// NewHealthHandler returns a health check handler. The registered kinds
// come straight from the sealed registry, so a deployment missing a
// handler is visible before the first dispatch fails.
func NewHealthHandler(cfg *config.Config, reg *registry.HandlerRegistry, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds := reg.Kinds()
		names := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			names = append(names, kind.String())
		}

		uptime := time.Since(startTime)
		response := HealthResponse{
			Status:          "healthy",
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			RegisteredKinds: names,
			Uptime:          uptime.String(),
			Version:         cfg.Version,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			respondWithError(w, errors.NewInternalError("failed to encode response"), lg)
		}
	}
}
