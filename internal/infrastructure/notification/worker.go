package notification

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Worker consumes vendor notification tasks
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler shared.EventHandler
	logger  *zap.Logger
}

// NewWorker creates a worker that hands each task to handler, normally a
// VendorNotifier wrapped in an event.IdempotentHandler.
func NewWorker(opt asynq.RedisConnOpt, cfg config.NotificationConfig, handler shared.EventHandler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 5
	}

	named := logger.Named("notification_worker")
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      named.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			named.Warn("notification task failed",
				zap.String("task_type", task.Type()),
				zap.Error(err),
			)
		}),
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		handler: handler,
		logger:  named,
	}
	w.mux.HandleFunc(TaskVendorExecutionAssigned, w.handleExecutionAssigned)
	return w
}

// ProcessTask routes a single task through the worker's mux
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	return w.mux.ProcessTask(ctx, task)
}

// Run processes tasks until ctx is cancelled, then waits for in-flight tasks
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start notification worker: %w", err)
	}
	w.logger.Info("notification worker started")

	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("notification worker stopped")
	return nil
}

func (w *Worker) handleExecutionAssigned(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseExecutionAssignedPayload(task)
	if err != nil {
		// A malformed payload never parses on retry
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	event, err := payload.Event()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return w.handler.Handle(ctx, event)
}
