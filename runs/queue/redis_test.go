//go:build integration

package queue

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestRedisRunQueue_NewRedisRunQueue(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	assert.Assert(t, q != nil)
	assert.Assert(t, len(q.queueName) > 0)
	assert.Assert(t, q.client != nil)
}

func TestRedisRunQueue_BasicOperations(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	testQueueBasicOperations(t, q)
}

func TestRedisRunQueue_FIFOOrdering(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	testQueueFIFOOrdering(t, q)
}

func TestRedisRunQueue_Concurrency(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	testQueueConcurrency(t, q)
}

func TestRedisRunQueue_ConnectionErrors(t *testing.T) {
	// Test invalid Redis URL
	_, err := NewRedisRunQueue("invalid://url", "test")
	assert.ErrorContains(t, err, "invalid Redis URL")

	// Test unreachable Redis
	_, err = NewRedisRunQueue("redis://localhost:99999/1", "test")
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestRedisRunQueue_LargePayload(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	ctx := context.Background()

	// Build a run with roughly 1MB of rule payload
	largeData := make(map[string]string)
	for i := 0; i < 1000; i++ {
		largeData[fmt.Sprintf("key_%d", i)] = strings.Repeat("x", 1000)
	}

	run := createTestRun("window", largeData)

	err := q.Enqueue(ctx, run)
	assert.NilError(t, err)

	dequeued, err := q.Dequeue(ctx)
	assert.NilError(t, err)
	assert.Equal(t, run.ID, dequeued.ID)
	assert.Equal(t, string(run.Rules[0].Payload), string(dequeued.Rules[0].Payload))
}

func TestRedisRunQueue_InvalidData(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	ctx := context.Background()

	// Manually insert invalid JSON
	err := q.client.LPush(ctx, q.queueName, "invalid-json").Err()
	assert.NilError(t, err)

	_, err = q.Dequeue(ctx)
	assert.ErrorContains(t, err, "failed to unmarshal run")
}

func TestRedisRunQueue_Close(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	err := q.Close()
	assert.NilError(t, err)

	// Operations after close should fail
	ctx := context.Background()
	run := createTestRun("window", map[string]string{})

	err = q.Enqueue(ctx, run)
	assert.ErrorContains(t, err, "client is closed")
}

func TestRedisRunQueue_HighThroughput(t *testing.T) {
	q, cleanup := setupRedisTestcontainer(t)
	defer cleanup()

	ctx := context.Background()
	numRuns := 1000

	start := time.Now()

	for i := 0; i < numRuns; i++ {
		run := createTestRun("quota", map[string]int{"used": i, "limit": numRuns})
		err := q.Enqueue(ctx, run)
		assert.NilError(t, err)
	}

	for i := 0; i < numRuns; i++ {
		_, err := q.Dequeue(ctx)
		assert.NilError(t, err)
	}

	duration := time.Since(start)
	t.Logf("Processed %d runs in %v (%.2f runs/sec)",
		numRuns, duration, float64(numRuns)/duration.Seconds())
}
