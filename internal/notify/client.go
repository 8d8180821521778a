package notify

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits notification jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq-backed notification client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueStatusChanged enqueues a status-change notification.
func (c *Client) EnqueueStatusChanged(ctx context.Context, payload StatusChangedPayload) (*asynq.TaskInfo, error) {
	task, err := NewStatusChangedTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
