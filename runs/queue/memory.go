package queue

import (
	"context"
	"fmt"
	"sync"

	"rule-orchestrator/runs"
)

var _ RunQueue = (*MemoryRunQueue)(nil)

// MemoryRunQueue is a channel-backed queue for tests and single-process
// deployments. FIFO, bounded by capacity.
type MemoryRunQueue struct {
	runs      chan *runs.Run
	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryRunQueue creates a queue holding at most capacity runs.
func NewMemoryRunQueue(capacity int) *MemoryRunQueue {
	return &MemoryRunQueue{
		runs:   make(chan *runs.Run, capacity),
		closed: make(chan struct{}),
	}
}

func (q *MemoryRunQueue) Enqueue(ctx context.Context, run *runs.Run) error {
	select {
	case <-q.closed:
		return fmt.Errorf("queue is closed")
	case <-ctx.Done():
		return ctx.Err()
	case q.runs <- run:
		return nil
	}
}

func (q *MemoryRunQueue) Dequeue(ctx context.Context) (*runs.Run, error) {
	select {
	case <-q.closed:
		return nil, fmt.Errorf("queue is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	case run := <-q.runs:
		return run, nil
	}
}

func (q *MemoryRunQueue) Depth(_ context.Context) (int64, error) {
	return int64(len(q.runs)), nil
}

func (q *MemoryRunQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
	return nil
}
