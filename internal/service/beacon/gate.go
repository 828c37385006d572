package beacon

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"beacon-core/internal/model"
	"beacon-core/pkg/crypto_util"
	"beacon-core/pkg/errno"
	"beacon-core/pkg/logger"
	"beacon-core/pkg/monitor"
)

// Gate 通知闸门: 内容去重 + 逐个收件人投递
// 去重状态属于实例本身，不同 Beacon 之间互不影响
type Gate struct {
	mu         sync.Mutex
	prefix     string
	recipients []string
	notifier   Notifier
	store      *SnapshotStore
	hash       crypto_util.Hasher
	metrics    *monitor.BeaconMetrics

	lastSent string
}

func NewGate(appName string, recipients []string, notifier Notifier, store *SnapshotStore, hash crypto_util.Hasher, metrics *monitor.BeaconMetrics) *Gate {
	if hash == nil {
		hash = crypto_util.CalculateSHA256
	}
	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}
	return &Gate{
		prefix:     prefix,
		recipients: append([]string(nil), recipients...),
		notifier:   notifier,
		store:      store,
		hash:       hash,
		metrics:    metrics,
	}
}

// Fingerprint 对 (subject, body) 计算指纹；subject 带长度前缀，避免拼接歧义
func (g *Gate) Fingerprint(subject string, body []byte) string {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(subject)))
	return g.hash(n[:], []byte(subject), body)
}

// Notify 把当前 Store 内容作为正文发送。
// 与上一次发送的指纹相同则直接返回 (false, nil)。
// 指纹在投递前就记录下来，某个收件人失败不会导致下个周期对其他人重发；
// 各收件人的错误合并后返回。
func (g *Gate) Notify(ctx context.Context, subject string, best model.BestKnownState) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	body, err := g.store.Body()
	if err != nil {
		return false, fmt.Errorf("serialize snapshots: %w", err)
	}

	id := g.Fingerprint(subject, body)
	if id == g.lastSent {
		g.metrics.AlertSuppressed(subject)
		logger.Debug("duplicate alert suppressed", zap.String("subject", subject))
		return false, nil
	}
	g.lastSent = id

	var errs []error
	for _, rcpt := range g.recipients {
		if err := g.notifier.Deliver(ctx, rcpt, g.prefix+subject, string(body)); err != nil {
			g.metrics.DeliveryFailed()
			logger.Error("alert delivery failed",
				zap.String("recipient", rcpt), zap.String("subject", subject), zap.Error(err))
			errs = append(errs, fmt.Errorf("%w: %s: %w", errno.ErrDelivery, rcpt, err))
		}
	}
	g.metrics.AlertSent(subject)

	logger.Info(subject,
		zap.String("subject", subject),
		zap.Uint64("height", best.Height),
		zap.String("hash", best.BlockHash))

	return true, errors.Join(errs...)
}

// LastSent 最近一次发送的指纹，空字符串表示还没发过
func (g *Gate) LastSent() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSent
}
