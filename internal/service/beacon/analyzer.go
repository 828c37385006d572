package beacon

import (
	"beacon-core/internal/model"
	"beacon-core/pkg/errno"
)

// Analysis 一次全量重算的结果
type Analysis struct {
	Low        uint64
	High       uint64
	Fork       bool
	BestHeight uint64
	BestBlock  string
}

// Skew 最高与最低高度之差
func (a Analysis) Skew() uint64 {
	return a.High - a.Low
}

// HeightOutOfSync 高度差超过 1 才算不同步 (差 1 是正常的出块传播延迟)
func (a Analysis) HeightOutOfSync() bool {
	return a.Skew() > 1
}

// Analyze 对当前快照做高度范围与分叉/多数派计算
func Analyze(snaps []model.NodeSnapshot) (Analysis, error) {
	if len(snaps) == 0 {
		return Analysis{}, errno.ErrEmptySnapshotStore
	}

	low, high := HeightExtent(snaps)
	fork, bestHeight, bestBlock := DetectFork(snaps)
	return Analysis{
		Low:        low,
		High:       high,
		Fork:       fork,
		BestHeight: bestHeight,
		BestBlock:  bestBlock,
	}, nil
}

// HeightExtent 返回 (最低高度, 最高高度)，调用方保证 snaps 非空
func HeightExtent(snaps []model.NodeSnapshot) (low, high uint64) {
	for i, s := range snaps {
		h := s.Snapshot.Height
		if i == 0 || h < low {
			low = h
		}
		if i == 0 || h > high {
			high = h
		}
	}
	return low, high
}

// DetectFork 按高度分组，同一高度上出现不同哈希即视为分叉。
// 同时在最高高度上统计各哈希的节点数，票数最多的胜出；
// 平票时按节点配置顺序，先达到最高票数的哈希胜出。
func DetectFork(snaps []model.NodeSnapshot) (fork bool, bestHeight uint64, bestBlock string) {
	first := make(map[uint64]string, len(snaps))
	for _, s := range snaps {
		h := s.Snapshot.Height
		hash, seen := first[h]
		switch {
		case !seen:
			first[h] = s.Snapshot.BestBlockHash
		case hash != s.Snapshot.BestBlockHash:
			fork = true
		}
		if h > bestHeight {
			bestHeight = h
		}
	}

	votes := make(map[string]int)
	best := 0
	for _, s := range snaps {
		if s.Snapshot.Height != bestHeight {
			continue
		}
		hash := s.Snapshot.BestBlockHash
		votes[hash]++
		if votes[hash] > best {
			best = votes[hash]
			bestBlock = hash
		}
	}
	return fork, bestHeight, bestBlock
}
