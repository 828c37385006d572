package beacon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"beacon-core/internal/model"
	"beacon-core/pkg/crypto_util"
	"beacon-core/pkg/errno"
	"beacon-core/pkg/logger"
	"beacon-core/pkg/monitor"
)

// Options 构造 Beacon 所需的协作者，配置在此之前已经校验过
type Options struct {
	AppName     string
	Clients     []NodeClient
	Recipients  []string
	Notifier    Notifier
	Hash        crypto_util.Hasher
	Concurrency int
	Metrics     *monitor.BeaconMetrics
}

// Status 供状态接口/CLI 展示的只读视图
type Status struct {
	Nodes []model.NodeSnapshot `json:"nodes"`
	Best  model.BestKnownState `json:"best_known"`
	Last  *model.CycleReport   `json:"last_cycle,omitempty"`
}

// Beacon 周期编排: Sync -> Analyze -> Notify
type Beacon struct {
	store     *SnapshotStore
	collector *Collector
	gate      *Gate
	metrics   *monitor.BeaconMetrics

	// cycle 保证同一时刻只有一个周期在跑
	cycle sync.Mutex

	mu   sync.RWMutex
	best model.BestKnownState
	last *model.CycleReport
}

func New(opts Options) (*Beacon, error) {
	if len(opts.Clients) == 0 {
		return nil, fmt.Errorf("%w: no node clients", errno.ErrConfigInvalid)
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("%w: notifier is required", errno.ErrConfigInvalid)
	}

	nodes := make([]model.NodeID, 0, len(opts.Clients))
	for _, c := range opts.Clients {
		nodes = append(nodes, c.Node())
	}
	store := NewSnapshotStore(nodes)

	return &Beacon{
		store:     store,
		collector: NewCollector(opts.Clients, store, opts.Concurrency, opts.Metrics),
		gate:      NewGate(opts.AppName, opts.Recipients, opts.Notifier, store, opts.Hash, opts.Metrics),
		metrics:   opts.Metrics,
	}, nil
}

// Detect 执行一次完整的检测周期。
// 周期内的任何 panic 都会被捕获并转成错误，不会影响下一次调度。
func (b *Beacon) Detect(ctx context.Context) (report model.CycleReport, err error) {
	b.cycle.Lock()
	defer b.cycle.Unlock()

	report.StartedAt = time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errno.ErrCyclePanic, r)
			logger.Error("detection cycle panicked", zap.Any("panic", r))
		}
		report.Duration = time.Since(report.StartedAt)
		b.metrics.CycleDone(report.Duration)

		b.mu.Lock()
		r := report
		b.last = &r
		b.mu.Unlock()
	}()

	// 1. Syncing
	res := b.collector.Sync(ctx)
	report.Synced, report.Failed = res.Synced, res.Failed

	if len(res.Synced) == 0 || b.store.Len() == 0 {
		report.Skipped = true
		report.Best = b.Best()
		b.metrics.CycleSkipped()
		logger.Warn("no node synced in this cycle, skipping analysis",
			zap.Int("failed", len(res.Failed)))
		return report, nil
	}

	// 2. Analyzing
	a, err := Analyze(b.store.Snapshots())
	if err != nil {
		report.Skipped = true
		return report, err
	}
	report.Low, report.High = a.Low, a.High
	report.Fork = a.Fork
	report.BestHeight, report.BestBlock = a.BestHeight, a.BestBlock

	// 3. Notifying
	var errs []error
	notify := func(subject string) {
		if ctx.Err() != nil {
			return
		}
		sent, err := b.gate.Notify(ctx, subject, b.Best())
		if sent {
			report.AlertsSent = append(report.AlertsSent, subject)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if a.HeightOutOfSync() {
		notify(SubjectHeightAlert)
	}
	if a.Fork {
		notify(SubjectForkAlert)
	}
	// ctx 已取消时不推进 BestKnownState，否则新区块通知会永久丢失
	if ctx.Err() == nil && b.advance(a.BestHeight, a.BestBlock) {
		notify(SubjectNewBlock)
	}

	report.Best = b.Best()
	b.metrics.ObserveAnalysis(a.Skew(), a.Fork, report.Best.Height)

	if err := errors.Join(errs...); err != nil {
		report.DeliveryErr = err.Error()
		return report, err
	}
	return report, nil
}

// advance 只有严格更高时才更新 BestKnownState
func (b *Beacon) advance(height uint64, hash string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if height <= b.best.Height {
		return false
	}
	b.best = model.BestKnownState{Height: height, BlockHash: hash}
	return true
}

func (b *Beacon) Best() model.BestKnownState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.best
}

func (b *Beacon) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Status{
		Nodes: b.store.Snapshots(),
		Best:  b.best,
	}
	if b.last != nil {
		last := *b.last
		s.Last = &last
	}
	return s
}

// Store 暴露给 CLI 打印快照
func (b *Beacon) Store() *SnapshotStore {
	return b.store
}
