package runners

import (
	"context"

	"rule-orchestrator/runs"
)

// Runner defines the strategy for executing a submitted validation run.
type Runner interface {
	// Run executes or schedules the run. Synchronous implementations
	// leave the run in a final state before returning; asynchronous ones
	// hand it to background workers.
	Run(ctx context.Context, run *runs.Run) error
}
