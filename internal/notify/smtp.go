package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"beacon-core/pkg/config"
)

// Dialer gomail.Dialer 的最小子集，方便测试替换
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier 直接通过 SMTP 发送告警邮件
type SMTPNotifier struct {
	dialer Dialer
	from   string
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Secure
	return &SMTPNotifier{dialer: d, from: cfg.From}
}

// NewSMTPNotifierWithDialer 使用自定义 Dialer (测试用)
func NewSMTPNotifierWithDialer(d Dialer, from string) *SMTPNotifier {
	return &SMTPNotifier{dialer: d, from: from}
}

// Message 构造纯文本邮件
func (n *SMTPNotifier) Message(recipient, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (n *SMTPNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(n.Message(recipient, subject, body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}
