package beacon

import (
	"context"
	"errors"
	"sync"

	"beacon-core/internal/model"
)

type fakeClient struct {
	mu    sync.Mutex
	node  model.NodeID
	snap  model.ChainSnapshot
	err   error
	panic bool
	calls int
}

func newFake(node string, height uint64, hash string) *fakeClient {
	return &fakeClient{node: model.NodeID(node), snap: model.ChainSnapshot{Height: height, BestBlockHash: hash}}
}

func (f *fakeClient) Node() model.NodeID { return f.node }

func (f *fakeClient) Query(ctx context.Context) (model.ChainSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panic {
		panic("node exploded")
	}
	if f.err != nil {
		return model.ChainSnapshot{}, f.err
	}
	return f.snap, nil
}

func (f *fakeClient) set(height uint64, hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = model.ChainSnapshot{Height: height, BestBlockHash: hash}
	f.err = nil
}

func (f *fakeClient) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type delivery struct {
	Recipient string
	Subject   string
	Body      string
}

type fakeNotifier struct {
	mu        sync.Mutex
	sent      []delivery
	failFor   map[string]bool
	panicMsg  string
	attempted int
}

func (n *fakeNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempted++
	if n.panicMsg != "" {
		panic(n.panicMsg)
	}
	if n.failFor[recipient] {
		return errors.New("mailbox unavailable")
	}
	n.sent = append(n.sent, delivery{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (n *fakeNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, d := range n.sent {
		out = append(out, d.Subject)
	}
	return out
}

func snaps(pairs ...interface{}) []model.NodeSnapshot {
	var out []model.NodeSnapshot
	for i := 0; i+2 < len(pairs); i += 3 {
		out = append(out, model.NodeSnapshot{
			Node: model.NodeID(pairs[i].(string)),
			Snapshot: model.ChainSnapshot{
				Height:        uint64(pairs[i+1].(int)),
				BestBlockHash: pairs[i+2].(string),
			},
		})
	}
	return out
}
