// Package beacon 链状态共识与分叉检测核心
//
// 每个周期: Collector 拉取各节点快照写入 SnapshotStore，
// Analyzer 计算高度差与分叉/多数派链头，Gate 对告警做内容去重后交给 Notifier。
package beacon

import (
	"context"

	"beacon-core/internal/model"
)

// NodeClient 查询单个节点的当前链状态
// 超时由实现方自己控制，核心不设超时
type NodeClient interface {
	Node() model.NodeID
	Query(ctx context.Context) (model.ChainSnapshot, error)
}

// Notifier 把一条消息投递给一个收件人，失败不重试
type Notifier interface {
	Deliver(ctx context.Context, recipient, subject, body string) error
}

// 告警标题 (去重指纹基于这些不带前缀的标题计算)
const (
	SubjectHeightAlert = "Alert: Chain height out-of-sync."
	SubjectForkAlert   = "Alert: Chain fork detected."
	SubjectNewBlock    = "Notice: Chain has new block."
)
