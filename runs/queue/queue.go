package queue

import (
	"context"

	"rule-orchestrator/runs"
)

// RunQueue interface for background run processing
type RunQueue interface {
	// Enqueue adds a validation run to the queue
	Enqueue(ctx context.Context, run *runs.Run) error

	// Dequeue removes and returns the next validation run, blocking until
	// one is available or the context is cancelled
	Dequeue(ctx context.Context) (*runs.Run, error)

	// Depth returns the number of runs waiting in the queue
	Depth(ctx context.Context) (int64, error)

	// Close cleanly shuts down the queue connection
	Close() error
}
