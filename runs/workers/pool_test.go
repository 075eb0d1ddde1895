package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/batch"
	"rule-orchestrator/rules/dispatch"
	"rule-orchestrator/rules/registry"
	"rule-orchestrator/runs"
	"rule-orchestrator/runs/queue"
	"rule-orchestrator/runs/runners"
	"rule-orchestrator/runs/store"
)

// passingHandler accepts everything it sees.
type passingHandler struct {
	kind rules.Kind
}

type passingParams struct {
	kind rules.Kind
}

func (p passingParams) Kind() rules.Kind { return p.kind }

func (h *passingHandler) Kind() rules.Kind { return h.kind }

func (h *passingHandler) Decode(_ json.RawMessage) (rules.RuleParameters, error) {
	return passingParams{kind: h.kind}, nil
}

func (h *passingHandler) Evaluate(_ context.Context, _ rules.RuleParameters) rules.Outcome {
	return rules.Produced(rules.Pass(h.kind, "ok"))
}

func createTestPool(t *testing.T, workerCount int, q queue.RunQueue) (*WorkerPool, store.RunStore) {
	t.Helper()
	var buf bytes.Buffer
	lg := logger.New("DEBUG", &buf)

	reg := registry.NewRegistry()
	assert.NilError(t, reg.Register(&passingHandler{kind: "window"}))
	reg.Seal()

	runStore := store.NewMemoryRunStore()
	executor := batch.NewExecutor(dispatch.NewDispatcher(reg, lg, 0), lg)
	execution := runners.NewExecution(executor, runStore, lg)

	return NewWorkerPool(workerCount, q, execution, lg), runStore
}

func TestWorkerPool_NewWorkerPool(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()

	testCases := []struct {
		name        string
		workerCount int
	}{
		{"single worker", 1},
		{"multiple workers", 3},
		{"many workers", 10},
		{"zero workers", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool, _ := createTestPool(t, tc.workerCount, q)

			assert.Assert(t, pool != nil)
			assert.Equal(t, tc.workerCount, pool.WorkerCount())
			assert.Equal(t, 30*time.Second, pool.shutdownTimeout) // Default timeout
			assert.Assert(t, pool.workers != nil)
			assert.Assert(t, pool.logger != nil)
		})
	}
}

func TestWorkerPool_SetShutdownTimeout(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()
	pool, _ := createTestPool(t, 1, q)

	customTimeout := 10 * time.Second
	pool.SetShutdownTimeout(customTimeout)

	assert.Equal(t, customTimeout, pool.shutdownTimeout)
}

func TestWorkerPool_StartStop_WithZeroWorkers(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()
	pool, _ := createTestPool(t, 0, q)

	ctx := t.Context()

	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)

	pool.Stop()

	select {
	case <-done:
		// Success - empty pool handled correctly
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Empty pool should start/stop quickly")
	}
}

func TestWorkerPool_ProcessesQueuedRuns(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()
	pool, runStore := createTestPool(t, 2, q)

	ctx := t.Context()

	// Persist and enqueue a few runs before starting the pool.
	queued := make([]*runs.Run, 0, 3)
	for i := 0; i < 3; i++ {
		run := runs.NewRun([]rules.Encoded{{RuleKind: "window"}})
		assert.NilError(t, runStore.Save(ctx, run))
		assert.NilError(t, q.Enqueue(ctx, run))
		queued = append(queued, run)
	}

	pool.Start(ctx)
	defer pool.Stop()

	// Wait for the workers to drain the queue and persist final states.
	deadline := time.After(2 * time.Second)
	for _, run := range queued {
		for {
			got, err := runStore.Get(ctx, run.ID)
			assert.NilError(t, err)
			if got.Status.IsFinal() {
				assert.Equal(t, runs.StatusDone, got.Status)
				break
			}
			select {
			case <-deadline:
				t.Fatalf("run %s never reached a final state (last: %s)", run.ID, got.Status)
			case <-time.After(10 * time.Millisecond):
			}
		}
	}

	depth, err := q.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(0), depth)
}

func TestWorkerPool_StopIsIdempotent(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()
	pool, _ := createTestPool(t, 1, q)

	pool.Start(t.Context())

	pool.Stop()
	pool.Stop() // Second stop must not panic or block.
}

func TestWorkerPool_StopUnblocksIdleWorkers(t *testing.T) {
	q := queue.NewMemoryRunQueue(10)
	defer q.Close()
	pool, _ := createTestPool(t, 3, q)
	pool.SetShutdownTimeout(time.Second)

	pool.Start(t.Context())

	// Workers are blocked on an empty queue; Stop must still return.
	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not unblock idle workers")
	}
}
