// Package bootstrap 把配置装配成 Beacon 及其协作者，服务进程和 CLI 共用
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"beacon-core/internal/notify"
	"beacon-core/internal/rpc"
	"beacon-core/internal/service/beacon"
	"beacon-core/internal/worker"
	"beacon-core/pkg/config"
	"beacon-core/pkg/crypto_util"
	"beacon-core/pkg/monitor"
)

// Closer 资源清理函数，按创建的逆序调用
type Closer func()

// NewClients 为每个配置的节点创建 RPC 客户端，保持配置顺序
func NewClients(ctx context.Context, nodes []config.NodeConfig) ([]*rpc.Client, Closer, error) {
	clients := make([]*rpc.Client, 0, len(nodes))
	closeAll := func() {
		for _, c := range clients {
			c.Close()
		}
	}
	for _, n := range nodes {
		c, err := rpc.Dial(ctx, n)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		clients = append(clients, c)
	}
	return clients, closeAll, nil
}

// NewNotifier 按 notify.mode 选择投递方式
func NewNotifier(cfg *config.Config) (beacon.Notifier, Closer, error) {
	switch cfg.Notify.Mode {
	case "log":
		return notify.LogNotifier{}, func() {}, nil
	case "queue":
		client := worker.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return notify.NewQueueNotifier(client), func() { _ = client.Close() }, nil
	case "smtp", "":
		return notify.NewSMTPNotifier(cfg.SMTP), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify mode %q", cfg.Notify.Mode)
	}
}

// NewBeacon 装配完整的 Beacon；reg 为 nil 时不采集指标
func NewBeacon(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*beacon.Beacon, Closer, error) {
	hasher, err := crypto_util.NewHasher(cfg.Alert.Hash)
	if err != nil {
		return nil, nil, err
	}

	clients, closeClients, err := NewClients(ctx, cfg.Nodes)
	if err != nil {
		return nil, nil, err
	}

	notifier, closeNotifier, err := NewNotifier(cfg)
	if err != nil {
		closeClients()
		return nil, nil, err
	}

	var metrics *monitor.BeaconMetrics
	if reg != nil {
		metrics = monitor.NewBeaconMetrics(reg)
	}

	nodeClients := make([]beacon.NodeClient, 0, len(clients))
	for _, c := range clients {
		nodeClients = append(nodeClients, c)
	}

	b, err := beacon.New(beacon.Options{
		AppName:     cfg.App.Name,
		Clients:     nodeClients,
		Recipients:  cfg.Subscribers,
		Notifier:    notifier,
		Hash:        hasher,
		Concurrency: cfg.Concurrency,
		Metrics:     metrics,
	})
	if err != nil {
		closeNotifier()
		closeClients()
		return nil, nil, err
	}

	return b, func() {
		closeNotifier()
		closeClients()
	}, nil
}
