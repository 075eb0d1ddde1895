package runners

import (
	"context"

	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/batch"
	"rule-orchestrator/runs"
	"rule-orchestrator/runs/store"
)

// Execution drives one validation run through the batch executor and
// records the outcome. It is shared by the synchronous runner and the
// background workers so both paths apply identical semantics: the batch
// is always evaluated sequentially, and store failures after a completed
// evaluation are logged but never turn a finished run into an error.
type Execution struct {
	batch  *batch.Executor
	store  store.RunStore
	logger *logger.Logger
}

// NewExecution wires the shared run execution.
func NewExecution(batchExecutor *batch.Executor, runStore store.RunStore, lg *logger.Logger) *Execution {
	return &Execution{
		batch:  batchExecutor,
		store:  runStore,
		logger: lg,
	}
}

// Execute evaluates the run's rules in order and persists the final
// state: done, rejected (business veto) or failed (infrastructure).
// The returned error is the infrastructure failure, if any; a rejected
// run returns nil because a deliberate veto is data, not an error.
func (e *Execution) Execute(ctx context.Context, run *runs.Run) error {
	if err := run.SetStatus(runs.StatusRunning); err != nil {
		return err
	}
	if err := e.store.Update(ctx, run.ID, run.Status, run.Results, run.Error); err != nil {
		e.logger.Run(run.ID, "failed to update running status", map[string]any{
			"error": err.Error(),
		})
		// Continue execution even if the store update fails
	}

	params := make([]rules.RuleParameters, len(run.Rules))
	for i, enc := range run.Rules {
		params[i] = enc
	}

	results, err := e.batch.RunAll(ctx, params)
	run.Results = results

	if err != nil {
		run.Error = err.Error()
		if setErr := run.SetStatus(runs.StatusFailed); setErr != nil {
			e.logger.Error("failed to set run status to failed", map[string]any{
				"run_id": run.ID,
				"error":  setErr.Error(),
			})
		}
		if updateErr := e.store.Update(ctx, run.ID, run.Status, run.Results, run.Error); updateErr != nil {
			e.logger.Run(run.ID, "failed to update run failure state", map[string]any{
				"update_error":   updateErr.Error(),
				"original_error": err.Error(),
			})
		}
		return err
	}

	final := runs.StatusDone
	if len(results) > 0 && results[len(results)-1].IsBusinessRejection() {
		final = runs.StatusRejected
	}
	if err := run.SetStatus(final); err != nil {
		return err
	}

	if err := e.store.Update(ctx, run.ID, run.Status, run.Results, run.Error); err != nil {
		e.logger.Run(run.ID, "failed to update final run state", map[string]any{
			"error":        err.Error(),
			"final_status": run.Status.String(),
		})
		// the evaluation succeeded, what failed was the update. We continue.
	}

	e.logger.Run(run.ID, "run completed", map[string]any{
		"status":       run.Status.String(),
		"result_count": len(run.Results),
	})

	return nil
}
