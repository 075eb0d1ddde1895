package runners

import (
	"context"

	"rule-orchestrator/runs"
)

var _ Runner = (*SynchronousRunner)(nil)

// SynchronousRunner evaluates runs in-process and blocks until the run
// reaches a final state. This is the default strategy; the batch caller
// gets results in the submit response.
type SynchronousRunner struct {
	execution *Execution
}

// NewSynchronousRunner constructs a runner over the shared execution.
func NewSynchronousRunner(execution *Execution) *SynchronousRunner {
	return &SynchronousRunner{execution: execution}
}

func (r *SynchronousRunner) Run(ctx context.Context, run *runs.Run) error {
	return r.execution.Execute(ctx, run)
}
