package redis

import (
	"context"
	"os"
	"time"

	"dvrflow/internal/telemetry"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Queue carries workflow jobs between the submit API and the worker pool.
type Queue interface {
	EnqueueJob(ctx context.Context, job string) error
	DequeueJob(ctx context.Context) (string, error)
	EnqueueJobResult(ctx context.Context, result string) error
	Close() error
}

type DefaultQueue struct {
	client      *redis.Client
	jobQueue    string
	resultQueue string
}

// NewDefaultQueue connects to the redis instance named by REDIS_ADDR
// (default redis:6379) and pings it once.
func NewDefaultQueue() (*DefaultQueue, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "redis:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		telemetry.Logger.Error("System Error: Failed to connect to Redis", zap.Error(err))
		return nil, err
	}
	telemetry.Logger.Info("Connected to Redis", zap.String("addr", addr))

	return &DefaultQueue{client: client, jobQueue: "transcode:jobs", resultQueue: "transcode:results"}, nil
}

// EnqueueJob pushes a job onto the job queue, using LPUSH.
func (q *DefaultQueue) EnqueueJob(ctx context.Context, job string) error {
	if err := q.client.LPush(ctx, q.jobQueue, job).Err(); err != nil {
		telemetry.Logger.Error("System Error: Failed to enqueue job", zap.String("queue", q.jobQueue), zap.Error(err))
		return err
	}
	telemetry.Logger.Info("Job enqueued", zap.String("queue", q.jobQueue))
	return nil
}

// DequeueJob pops a job from the job queue, using BRPOP. Returns an empty
// string when the poll times out with nothing queued.
func (q *DefaultQueue) DequeueJob(ctx context.Context) (string, error) {
	res, err := q.client.BRPop(ctx, 30*time.Second, q.jobQueue).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		telemetry.Logger.Error("System Error: Failed to dequeue job", zap.String("queue", q.jobQueue), zap.Error(err))
		return "", err
	}
	return res[1], nil
}

// EnqueueJobResult pushes a completed job's result onto the result queue.
func (q *DefaultQueue) EnqueueJobResult(ctx context.Context, result string) error {
	if err := q.client.LPush(ctx, q.resultQueue, result).Err(); err != nil {
		telemetry.Logger.Error("System Error: Failed to enqueue job result", zap.String("queue", q.resultQueue), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the underlying client connection.
func (q *DefaultQueue) Close() error {
	if err := q.client.Close(); err != nil {
		telemetry.Logger.Error("System Error: Failed to close Redis client", zap.Error(err))
		return err
	}
	telemetry.Logger.Info("Redis client closed")
	return nil
}
