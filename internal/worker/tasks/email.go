package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beacon-core/pkg/logger"
)

// 任务类型常量
const (
	TypeEmailDelivery = "email:deliver"
)

// EmailDeliveryPayload 邮件任务参数
type EmailDeliveryPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Sender 真正发邮件的一方 (SMTPNotifier)
type Sender interface {
	Deliver(ctx context.Context, recipient, subject, body string) error
}

// ---------------------------------------------------------------------
// 1. Producer (Client) Code
// ---------------------------------------------------------------------

// NewEmailDeliveryTask 创建邮件发送任务
func NewEmailDeliveryTask(recipient, subject, body string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailDeliveryPayload{Recipient: recipient, Subject: subject, Body: body})
	if err != nil {
		return nil, err
	}
	// 告警过期就没意义了: 最多重试 5 次，单次 1 分钟超时
	return asynq.NewTask(TypeEmailDelivery, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// ---------------------------------------------------------------------
// 2. Consumer (Server) Code
// ---------------------------------------------------------------------

// EmailHandler 处理邮件发送任务
type EmailHandler struct {
	sender Sender
}

func NewEmailHandler(sender Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

func (h *EmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// JSON 解析失败，重试也没用
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.sender.Deliver(ctx, p.Recipient, p.Subject, p.Body); err != nil {
		logger.Warn("邮件发送失败，等待重试",
			zap.String("recipient", p.Recipient),
			zap.String("subject", p.Subject),
			zap.Error(err))
		return err
	}

	logger.Info("邮件发送成功", zap.String("recipient", p.Recipient), zap.String("subject", p.Subject))
	return nil
}
