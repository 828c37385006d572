package beacon

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"beacon-core/internal/model"
	"beacon-core/pkg/errno"
	"beacon-core/pkg/logger"
	"beacon-core/pkg/monitor"
)

// SyncResult 一次同步中成功/失败的节点，按配置顺序
type SyncResult struct {
	Synced []model.NodeID
	Failed []model.NodeID
}

// Collector 每个周期对所有节点查询一次并写入 Store
// 单个节点失败只记日志，旧快照保留
type Collector struct {
	clients     []NodeClient
	store       *SnapshotStore
	concurrency int
	metrics     *monitor.BeaconMetrics
}

func NewCollector(clients []NodeClient, store *SnapshotStore, concurrency int, metrics *monitor.BeaconMetrics) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		clients:     clients,
		store:       store,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// Sync 并发查询所有节点，全部结束后才返回
func (c *Collector) Sync(ctx context.Context) SyncResult {
	errs := make([]error, len(c.clients))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, client := range c.clients {
		i, client := i, client
		g.Go(func() error {
			errs[i] = c.syncOne(ctx, client)
			return nil
		})
	}
	_ = g.Wait()

	var res SyncResult
	for i, client := range c.clients {
		if errs[i] != nil {
			res.Failed = append(res.Failed, client.Node())
			continue
		}
		res.Synced = append(res.Synced, client.Node())
	}
	return res
}

func (c *Collector) syncOne(ctx context.Context, client NodeClient) (err error) {
	node := client.Node()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errno.ErrNodeQuery, r)
		}
		if err != nil {
			c.metrics.NodeFailed(string(node))
			logger.Warn("node query failed, keeping previous snapshot",
				zap.String("node", string(node)), zap.Error(err))
		}
	}()

	snap, err := client.Query(ctx)
	if err != nil {
		return err
	}
	if !snap.Valid() {
		return fmt.Errorf("%w: node %s returned empty best block hash", errno.ErrMalformedSnapshot, node)
	}
	if !c.store.Put(node, snap) {
		return fmt.Errorf("%w: node %s is not configured", errno.ErrNodeQuery, node)
	}

	c.metrics.ObserveNode(string(node), snap.Height)
	logger.Debug("node synced",
		zap.String("node", string(node)),
		zap.Uint64("height", snap.Height),
		zap.String("hash", snap.BestBlockHash))
	return nil
}
