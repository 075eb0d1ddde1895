package workers

import (
	"context"
	"sync"

	"rule-orchestrator/logger"
	"rule-orchestrator/runs/queue"
	"rule-orchestrator/runs/runners"
)

// Worker drains the run queue and evaluates each run to completion.
// Runs are processed one at a time; ordering across workers is not
// guaranteed, but the rules inside one run always execute sequentially.
type Worker struct {
	id        int
	queue     queue.RunQueue
	execution *runners.Execution
	logger    *logger.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewWorker(id int, q queue.RunQueue, execution *runners.Execution, lg *logger.Logger) *Worker {
	return &Worker{
		id:        id,
		queue:     q,
		execution: execution,
		logger:    lg,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the worker's processing loop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker starting", map[string]any{
		"worker_id": w.id,
	})

	defer w.logger.Info("worker stopped", map[string]any{
		"worker_id": w.id,
	})

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		default:
			// process next run (blocking)
			w.processNextRun(ctx)
		}
	}
}

// Stop signals the worker to stop gracefully
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *Worker) processNextRun(ctx context.Context) {
	// dequeue next run (blocking)
	run, err := w.queue.Dequeue(ctx)
	if err != nil {
		// Check if context was cancelled (normal shutdown)
		if ctx.Err() != nil {
			return
		}

		w.logger.Error("failed to dequeue run", map[string]any{
			"worker_id": w.id,
			"error":     err.Error(),
		})
		return
	}

	w.logger.Run(run.ID, "worker processing run", map[string]any{
		"worker_id":  w.id,
		"rule_count": len(run.Rules),
	})

	// Execution records failures in the run record; the error here is
	// already persisted, so the worker only logs it.
	if err := w.execution.Execute(ctx, run); err != nil {
		w.logger.Error("run execution failed", map[string]any{
			"worker_id": w.id,
			"run_id":    run.ID,
			"error":     err.Error(),
		})
	}
}
