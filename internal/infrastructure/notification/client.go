package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/printbroker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Enqueuer puts vendor notification tasks on the queue
type Enqueuer interface {
	EnqueueExecutionAssigned(ctx context.Context, payload ExecutionAssignedPayload) error
}

// Client enqueues notification tasks into asynq
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	logger   *zap.Logger
}

// RedisClientOpt converts the application Redis settings for asynq
func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient creates a queue client
func NewClient(opt asynq.RedisConnOpt, cfg config.NotificationConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		maxRetry: cfg.MaxRetry,
		logger:   logger.Named("notification_client"),
	}
}

// Close releases the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueExecutionAssigned queues a vendor email. The event ID doubles as the
// asynq task ID, so publishing the same event twice queues one task.
func (c *Client) EnqueueExecutionAssigned(ctx context.Context, payload ExecutionAssignedPayload) error {
	task, err := NewExecutionAssignedTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(c.queue), asynq.TaskID(payload.EventID)}
	if c.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.maxRetry))
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		c.logger.Debug("notification already queued", zap.String("event_id", payload.EventID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskVendorExecutionAssigned, err)
	}

	c.logger.Debug("notification queued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("execution_id", payload.ExecutionID),
	)
	return nil
}

var _ Enqueuer = (*Client)(nil)
