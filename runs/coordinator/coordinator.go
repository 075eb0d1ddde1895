package coordinator

import (
	"context"
	"fmt"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/runs"
	"rule-orchestrator/runs/runners"
	"rule-orchestrator/runs/store"
)

// Coordinator defines the contract for validation run coordination.
type Coordinator interface {
	// SubmitRun creates a run from the given rule specs and hands it to
	// the configured runner strategy.
	SubmitRun(ctx context.Context, specs []rules.Encoded) (*runs.Run, error)

	// GetRun retrieves a run by ID from the underlying storage.
	GetRun(ctx context.Context, runID string) (*runs.Run, error)

	// GetRunStatus returns just the status of a run for lightweight queries.
	GetRunStatus(ctx context.Context, runID string) (runs.RunStatus, error)
}

// coordinator is the single implementation that uses different runner
// strategies. The behavior changes based on which runner is injected
// (sync, async).
type coordinator struct {
	store  store.RunStore
	runner runners.Runner
	logger *logger.Logger
}

var _ Coordinator = (*coordinator)(nil)

// NewCoordinator constructs a coordinator with the specified runner strategy.
func NewCoordinator(runStore store.RunStore, runner runners.Runner, lg *logger.Logger) Coordinator {
	return &coordinator{
		store:  runStore,
		runner: runner,
		logger: lg,
	}
}

// SubmitRun creates and executes a new validation run.
func (c *coordinator) SubmitRun(ctx context.Context, specs []rules.Encoded) (*runs.Run, error) {
	run := runs.NewRun(specs)

	// Persist initial run state
	if err := c.store.Save(ctx, run); err != nil {
		c.logger.Run(run.ID, "failed to save run", map[string]any{
			"error": err.Error(),
		})
		return run, errors.NewInternalError("failed to save run")
	}

	c.logger.Run(run.ID, "run submitted", map[string]any{
		"rule_count":  len(run.Rules),
		"runner_type": fmt.Sprintf("%T", c.runner),
	})

	return run, c.runner.Run(ctx, run)
}

// GetRun retrieves a run by ID from the store.
func (c *coordinator) GetRun(ctx context.Context, runID string) (*runs.Run, error) {
	run, err := c.store.Get(ctx, runID)
	if err != nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("run %s not found", runID))
	}
	return run, nil
}

// GetRunStatus returns just the status of a run. This avoids copying the
// run's rule specs and results when the caller only polls for state.
func (c *coordinator) GetRunStatus(ctx context.Context, runID string) (runs.RunStatus, error) {
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return run.Status, nil
}
