package notify

import (
	"context"

	"go.uber.org/zap"

	"beacon-core/pkg/logger"
)

// LogNotifier 只把告警写进日志 (notify.mode=log，本地调试用)
type LogNotifier struct{}

func (LogNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	logger.Info("alert",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
