package notify

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beacon-core/internal/worker/tasks"
	"beacon-core/pkg/logger"
)

// Enqueuer 任务入队接口，由 worker.Client 实现
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier 把每封邮件作为 asynq 任务入队，由 worker 异步投递
// 重试由队列负责，检测核心本身不重试
type QueueNotifier struct {
	queue Enqueuer
}

func NewQueueNotifier(q Enqueuer) *QueueNotifier {
	return &QueueNotifier{queue: q}
}

func (n *QueueNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	task, err := tasks.NewEmailDeliveryTask(recipient, subject, body)
	if err != nil {
		return err
	}
	info, err := n.queue.EnqueueContext(ctx, task, asynq.Queue("critical"))
	if err != nil {
		return fmt.Errorf("enqueue email to %s: %w", recipient, err)
	}
	logger.Debug("email task enqueued", zap.String("id", info.ID), zap.String("recipient", recipient))
	return nil
}
