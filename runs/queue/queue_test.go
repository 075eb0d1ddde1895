//go:build integration

package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"rule-orchestrator/rules"
	"rule-orchestrator/runs"
)

// Helper function to create a test run with an encoded rule spec
func createTestRun(kind rules.Kind, payload interface{}) *runs.Run {
	payloadBytes, _ := json.Marshal(payload)
	return runs.NewRun([]rules.Encoded{
		{RuleKind: kind, Payload: json.RawMessage(payloadBytes)},
	})
}

// Test helper for common queue operations
func testQueueBasicOperations(t *testing.T, q RunQueue) {
	ctx := context.Background()

	original := createTestRun("window", map[string]string{
		"start": "2026-08-01T00:00:00Z",
		"end":   "2026-08-10T00:00:00Z",
	})

	// Enqueue
	err := q.Enqueue(ctx, original)
	assert.NilError(t, err, "Failed to enqueue run")

	// Check queue depth
	depth, err := q.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth")
	assert.Equal(t, int64(1), depth, "Queue depth should be 1 after enqueue")

	// Dequeue
	dequeued, err := q.Dequeue(ctx)
	assert.NilError(t, err, "Failed to dequeue run")
	assert.Assert(t, dequeued != nil, "Dequeued run should not be nil")

	// Verify run content
	assert.Equal(t, original.ID, dequeued.ID)
	assert.Equal(t, original.Status, dequeued.Status)
	assert.Equal(t, len(original.Rules), len(dequeued.Rules))
	assert.Equal(t, original.Rules[0].RuleKind, dequeued.Rules[0].RuleKind)
	assert.Equal(t, string(original.Rules[0].Payload), string(dequeued.Rules[0].Payload))

	// Check queue is empty
	depth, err = q.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth after dequeue")
	assert.Equal(t, int64(0), depth, "Queue should be empty after dequeue")
}

func testQueueFIFOOrdering(t *testing.T, q RunQueue) {
	ctx := context.Background()

	// Enqueue multiple runs
	queued := []*runs.Run{
		createTestRun("window", map[string]string{"order": "first"}),
		createTestRun("quota", map[string]string{"order": "second"}),
		createTestRun("window", map[string]string{"order": "third"}),
	}

	for _, run := range queued {
		err := q.Enqueue(ctx, run)
		assert.NilError(t, err, "Failed to enqueue run")
	}

	depth, err := q.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth")
	assert.Equal(t, int64(3), depth, "Queue depth should be 3")

	// Dequeue and verify FIFO order
	for i, expected := range queued {
		dequeued, err := q.Dequeue(ctx)
		assert.NilError(t, err, "Failed to dequeue run %d", i)
		assert.Equal(t, expected.ID, dequeued.ID, "Run %d out of order", i)
	}

	depth, err = q.Depth(ctx)
	assert.NilError(t, err, "Failed to get final queue depth")
	assert.Equal(t, int64(0), depth, "Queue should be empty")
}

func testQueueConcurrency(t *testing.T, q RunQueue) {
	ctx := context.Background()
	numRuns := 10

	// Enqueue runs concurrently
	enqueueDone := make(chan struct{})
	go func() {
		defer close(enqueueDone)
		for i := 0; i < numRuns; i++ {
			run := createTestRun("quota", map[string]int{"used": i, "limit": 100})
			err := q.Enqueue(ctx, run)
			assert.NilError(t, err, "Failed to enqueue concurrent run %d", i)
		}
	}()

	<-enqueueDone

	depth, err := q.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth")
	assert.Equal(t, int64(numRuns), depth, "All runs should be enqueued")

	// Dequeue all runs concurrently
	results := make(chan *runs.Run, numRuns)
	errs := make(chan error, numRuns)

	for i := 0; i < numRuns; i++ {
		go func() {
			run, err := q.Dequeue(ctx)
			if err != nil {
				errs <- err
			} else {
				results <- run
			}
		}()
	}

	// Collect results
	var dequeued []*runs.Run
	for i := 0; i < numRuns; i++ {
		select {
		case run := <-results:
			dequeued = append(dequeued, run)
		case err := <-errs:
			t.Fatalf("Error during concurrent dequeue: %v", err)
		case <-time.After(1 * time.Second):
			t.Fatalf("Timeout waiting for concurrent dequeue %d", i)
		}
	}

	assert.Equal(t, numRuns, len(dequeued), "Should have dequeued all runs")

	depth, err = q.Depth(ctx)
	assert.NilError(t, err, "Failed to get final queue depth")
	assert.Equal(t, int64(0), depth, "Queue should be empty after concurrent operations")
}
