package model

import "time"

// NodeID 配置中节点的唯一名称 (不是网络地址)
type NodeID string

// ChainSnapshot 节点在某一时刻自报的链状态
// JSON 字段名沿用 getblockchaininfo 的命名，告警正文直接序列化它
type ChainSnapshot struct {
	Height        uint64 `json:"blocks"`
	BestBlockHash string `json:"bestblockhash"`
}

// Valid 快照进入 Store 前的形状检查
func (s ChainSnapshot) Valid() bool {
	return s.BestBlockHash != ""
}

// NodeSnapshot 带节点名的快照，按配置顺序排列
type NodeSnapshot struct {
	Node     NodeID        `json:"node"`
	Snapshot ChainSnapshot `json:"snapshot"`
}

// BestKnownState 进程生命周期内见过的最高高度及其胜出哈希
type BestKnownState struct {
	Height    uint64 `json:"height"`
	BlockHash string `json:"block_hash"`
}

// CycleReport 一次检测周期的结果摘要
type CycleReport struct {
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Synced      []NodeID       `json:"synced"`
	Failed      []NodeID       `json:"failed"`
	Skipped     bool           `json:"skipped"`
	Low         uint64         `json:"low"`
	High        uint64         `json:"high"`
	Fork        bool           `json:"fork"`
	BestHeight  uint64         `json:"best_height"`
	BestBlock   string         `json:"best_block"`
	Best        BestKnownState `json:"best_known"`
	AlertsSent  []string       `json:"alerts_sent"`
	DeliveryErr string         `json:"delivery_error,omitempty"`
}

// Skew 最高与最低高度之差
func (r CycleReport) Skew() uint64 {
	return r.High - r.Low
}
