package beacon

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon-core/internal/model"
	"beacon-core/pkg/monitor"
)

func newCollector(concurrency int, clients ...*fakeClient) (*Collector, *SnapshotStore) {
	ids := make([]model.NodeID, 0, len(clients))
	nc := make([]NodeClient, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.node)
		nc = append(nc, c)
	}
	store := NewSnapshotStore(ids)
	return NewCollector(nc, store, concurrency, nil), store
}

func TestCollector_Sync(t *testing.T) {
	a := newFake("a", 100, "A")
	b := newFake("b", 101, "B")
	c, store := newCollector(4, a, b)

	res := c.Sync(context.Background())
	assert.Equal(t, []model.NodeID{"a", "b"}, res.Synced)
	assert.Empty(t, res.Failed)

	snap, ok := store.Get("b")
	require.True(t, ok)
	assert.Equal(t, uint64(101), snap.Height)
}

func TestCollector_FailureKeepsPreviousSnapshot(t *testing.T) {
	a := newFake("a", 100, "A")
	b := newFake("b", 100, "A")
	c3 := newFake("c", 100, "A")
	c, store := newCollector(1, a, b, c3)
	c.Sync(context.Background())

	b.fail(errors.New("connection refused"))
	a.set(101, "A1")
	c3.set(101, "A1")

	res := c.Sync(context.Background())
	assert.Equal(t, []model.NodeID{"a", "c"}, res.Synced)
	assert.Equal(t, []model.NodeID{"b"}, res.Failed)

	// b 的旧快照保留，其余节点照常更新
	snap, _ := store.Get("b")
	assert.Equal(t, model.ChainSnapshot{Height: 100, BestBlockHash: "A"}, snap)
	snap, _ = store.Get("c")
	assert.Equal(t, model.ChainSnapshot{Height: 101, BestBlockHash: "A1"}, snap)
	assert.Equal(t, 2, c3.calls)
}

func TestCollector_NeverSyncedNodeNotInStore(t *testing.T) {
	a := newFake("a", 100, "A")
	b := newFake("b", 0, "")
	b.fail(errors.New("timeout"))
	c, store := newCollector(2, a, b)

	c.Sync(context.Background())
	_, ok := store.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestCollector_MalformedSnapshotDropped(t *testing.T) {
	a := newFake("a", 100, "")
	c, store := newCollector(1, a)

	res := c.Sync(context.Background())
	assert.Equal(t, []model.NodeID{"a"}, res.Failed)
	assert.Equal(t, 0, store.Len())
}

func TestCollector_PanicIsContained(t *testing.T) {
	a := newFake("a", 100, "A")
	bad := newFake("b", 100, "A")
	bad.panic = true

	ids := []model.NodeID{"a", "b"}
	store := NewSnapshotStore(ids)
	metrics := monitor.NewBeaconMetrics(prometheus.NewRegistry())
	c := NewCollector([]NodeClient{a, bad}, store, 2, metrics)

	var res SyncResult
	require.NotPanics(t, func() { res = c.Sync(context.Background()) })
	assert.Equal(t, []model.NodeID{"a"}, res.Synced)
	assert.Equal(t, []model.NodeID{"b"}, res.Failed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NodeQueryFailures.WithLabelValues("b")))
	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.NodeHeight.WithLabelValues("a")))
}

func TestCollector_ResultOrderIndependentOfConcurrency(t *testing.T) {
	var clients []*fakeClient
	for _, n := range []string{"n1", "n2", "n3", "n4", "n5", "n6"} {
		clients = append(clients, newFake(n, 10, "H"))
	}
	clients[2].fail(errors.New("down"))
	clients[4].fail(errors.New("down"))

	for _, limit := range []int{0, 1, 3, 10} {
		c, _ := newCollector(limit, clients...)
		res := c.Sync(context.Background())
		assert.Equal(t, []model.NodeID{"n1", "n2", "n4", "n6"}, res.Synced)
		assert.Equal(t, []model.NodeID{"n3", "n5"}, res.Failed)
	}
}
