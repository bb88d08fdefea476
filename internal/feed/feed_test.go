package feed_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/feed"
	"github.com/example/storefront/internal/orders"
)

type fakeSource struct {
	mu   sync.Mutex
	list []orders.Order
}

func (f *fakeSource) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]orders.Order, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeSource) set(list []orders.Order) {
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
}

type fakeChanges struct {
	ch       chan struct{}
	released bool
}

func (f *fakeChanges) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func()) {
	return f.ch, func() { f.released = true }
}

func TestSnapshotSortsNewestFirstWithMissingTimestampsLast(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	src := &fakeSource{list: []orders.Order{
		{ID: "o1", Status: orders.StatusProcessing, CreatedAt: t1},
		{ID: "o2", Status: orders.StatusDelivering, CreatedAt: t2},
		{ID: "o3", Status: orders.Status("shipped")}, // no timestamp recorded
	}}
	f := &feed.Feed{Orders: src, Changes: &fakeChanges{ch: make(chan struct{})}}

	views, err := f.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.Equal(t, "o2", views[0].OrderID)
	require.Equal(t, "o1", views[1].OrderID)
	require.Equal(t, "o3", views[2].OrderID)

	require.Equal(t, "yellow-color", views[0].StatusClass)
	require.Equal(t, "blue-color", views[1].StatusClass)
	require.Equal(t, "", views[2].StatusClass) // unknown status, no highlight
	require.Equal(t, "N/A", views[2].PlacedOn)
	require.NotEqual(t, "N/A", views[0].PlacedOn)
}

func TestSnapshotCountsItemsDefaultingQtyToOne(t *testing.T) {
	src := &fakeSource{list: []orders.Order{{
		ID:         "o1",
		Status:     orders.StatusProcessing,
		CreatedAt:  time.Now(),
		TotalCents: 2500,
		Lines: []orders.Line{
			{ProductID: "p1", Qty: 2, PriceCents: 1000},
			{ProductID: "p2", PriceCents: 500}, // qty missing
		},
	}}}
	f := &feed.Feed{Orders: src, Changes: &fakeChanges{ch: make(chan struct{})}}

	views, err := f.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, 3, views[0].TotalItems)
	require.Equal(t, 2500, views[0].TotalCents)
}

func recv(t *testing.T, ch <-chan []feed.OrderView) []feed.OrderView {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed push")
		return nil
	}
}

func TestSubscribePushesOnEveryChange(t *testing.T) {
	src := &fakeSource{list: []orders.Order{
		{ID: "o1", Status: orders.StatusProcessing, CreatedAt: time.Now()},
	}}
	changes := &fakeChanges{ch: make(chan struct{})}
	f := &feed.Feed{Orders: src, Changes: changes}

	stream, release := f.Subscribe(context.Background(), "u1")
	defer release()

	initial := recv(t, stream)
	require.Len(t, initial, 1)
	require.Equal(t, "o1", initial[0].OrderID)

	// the fulfillment side advances o1 and a new order lands
	src.set([]orders.Order{
		{ID: "o2", Status: orders.StatusProcessing, CreatedAt: time.Now().Add(time.Minute)},
		{ID: "o1", Status: orders.StatusDelivering, CreatedAt: time.Now()},
	})
	changes.ch <- struct{}{}

	updated := recv(t, stream)
	require.Len(t, updated, 2)
	require.Equal(t, "o2", updated[0].OrderID)
	require.Equal(t, orders.StatusDelivering, updated[1].Status)
}

func TestReleaseClosesStreamAndSubscription(t *testing.T) {
	src := &fakeSource{}
	changes := &fakeChanges{ch: make(chan struct{})}
	f := &feed.Feed{Orders: src, Changes: changes}

	stream, release := f.Subscribe(context.Background(), "u1")
	recv(t, stream) // initial (empty) push

	release()
	release() // idempotent

	require.True(t, changes.released)
	select {
	case _, ok := <-stream:
		require.False(t, ok, "stream should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after release")
	}
}
