package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rule-orchestrator/runs"
)

type RedisRunQueue struct {
	client    *redis.Client
	queueName string
}

var _ RunQueue = (*RedisRunQueue)(nil)

func NewRedisRunQueue(url, queueName string) (*RedisRunQueue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunQueue{
		client:    client,
		queueName: queueName,
	}, nil
}

func (q *RedisRunQueue) Enqueue(ctx context.Context, run *runs.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	// Add to queue (left push for FIFO with right pop)
	return q.client.LPush(ctx, q.queueName, data).Err()
}

func (q *RedisRunQueue) Dequeue(ctx context.Context) (*runs.Run, error) {
	// Blocking right pop with 0 timeout (wait indefinitely)
	result, err := q.client.BRPop(ctx, 0, q.queueName).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue run: %w", err)
	}

	// BRPop returns [queueName, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPop result format. Should have %d elements but got %d", 2, len(result))
	}

	var run runs.Run
	if err := json.Unmarshal([]byte(result[1]), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

func (q *RedisRunQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

func (q *RedisRunQueue) Close() error {
	return q.client.Close()
}
