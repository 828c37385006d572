package beacon

import (
	"encoding/json"
	"sync"

	"beacon-core/internal/model"
)

// SnapshotStore 每个节点最近一次成功查询到的快照
// 节点集合在构造时固定，条目只会新增或覆盖，不会删除
type SnapshotStore struct {
	mu        sync.RWMutex
	order     []model.NodeID
	snapshots map[model.NodeID]model.ChainSnapshot
}

func NewSnapshotStore(nodes []model.NodeID) *SnapshotStore {
	order := make([]model.NodeID, len(nodes))
	copy(order, nodes)
	return &SnapshotStore{
		order:     order,
		snapshots: make(map[model.NodeID]model.ChainSnapshot, len(nodes)),
	}
}

// Put 覆盖节点的快照；未配置的节点返回 false
func (s *SnapshotStore) Put(node model.NodeID, snap model.ChainSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.known(node) {
		return false
	}
	s.snapshots[node] = snap
	return true
}

func (s *SnapshotStore) Get(node model.NodeID) (model.ChainSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[node]
	return snap, ok
}

func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Snapshots 按配置顺序返回已有快照的副本
func (s *SnapshotStore) Snapshots() []model.NodeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.NodeSnapshot, 0, len(s.snapshots))
	for _, node := range s.order {
		if snap, ok := s.snapshots[node]; ok {
			out = append(out, model.NodeSnapshot{Node: node, Snapshot: snap})
		}
	}
	return out
}

// Body 告警正文: 以节点名为 key 的缩进 JSON
// encoding/json 对 map key 排序，所以相同内容总是得到相同字节
func (s *SnapshotStore) Body() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.snapshots, "", "  ")
}

func (s *SnapshotStore) known(node model.NodeID) bool {
	for _, n := range s.order {
		if n == node {
			return true
		}
	}
	return false
}
