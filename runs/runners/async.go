package runners

import (
	"context"

	"rule-orchestrator/errors"
	"rule-orchestrator/runs"
	"rule-orchestrator/runs/queue"

	handlerRegistry "rule-orchestrator/rules/registry"
)

// AsynchronousRunner validates runs and enqueues them for background
// processing. The batch itself still runs sequentially inside a single
// worker; async-ness only changes when it runs.
type AsynchronousRunner struct {
	queue    queue.RunQueue
	registry *handlerRegistry.HandlerRegistry
}

var _ Runner = (*AsynchronousRunner)(nil)

func NewAsynchronousRunner(q queue.RunQueue, registry *handlerRegistry.HandlerRegistry) *AsynchronousRunner {
	return &AsynchronousRunner{queue: q, registry: registry}
}

// Run checks every rule kind against the sealed registry before queuing,
// so a missing handler surfaces at submit time instead of inside a
// worker where the submitter can no longer see it.
func (r *AsynchronousRunner) Run(ctx context.Context, run *runs.Run) error {
	for _, spec := range run.Rules {
		if _, err := r.registry.Resolve(spec.Kind()); err != nil {
			return err
		}
	}

	if err := r.queue.Enqueue(ctx, run); err != nil {
		// Preserve structured errors, wrap others as internal errors
		if _, ok := errors.IsDispatchError(err); ok {
			return err
		}
		return errors.NewInternalError("failed to enqueue run: " + err.Error())
	}

	return nil
}
