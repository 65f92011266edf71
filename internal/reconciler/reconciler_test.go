package reconciler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cartbridge/internal/domain"
	"cartbridge/internal/remote"
)

type setCall struct {
	productID string
	quantity  int
}

// fakeStore mirrors the semantics of both real backends: add merges by
// product id, set requires an existing line, remove filters. Failures can be
// scripted globally or per product id.
type fakeStore struct {
	mu    sync.Mutex
	items []domain.LineItem

	fetchErr error
	failOn   map[string]error // add/set failures keyed by product id

	fetchCalls int
	addCalls   []domain.LineItem
	setCalls   []setCall

	blockAdd chan struct{} // when set, Add waits until the channel closes
}

func (f *fakeStore) Fetch(_ context.Context) ([]domain.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.LineItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeStore) Add(_ context.Context, line domain.LineItem) error {
	if f.blockAdd != nil {
		<-f.blockAdd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, line)
	if err := f.failOn[line.ID]; err != nil {
		return err
	}
	f.items = domain.AddLine(f.items, line)
	return nil
}

func (f *fakeStore) SetQuantity(_ context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls = append(f.setCalls, setCall{productID: productID, quantity: quantity})
	if err := f.failOn[productID]; err != nil {
		return err
	}
	i := domain.FindLine(f.items, productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	f.items[i].Quantity = quantity
	return nil
}

func (f *fakeStore) Remove(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[productID]; err != nil {
		return err
	}
	out := f.items[:0]
	for _, item := range f.items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	f.items = out
	return nil
}

func (f *fakeStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return nil
}

func (f *fakeStore) snapshot() []domain.LineItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LineItem, len(f.items))
	copy(out, f.items)
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(msg string) {
	n.mu.Lock()
	n.infos = append(n.infos, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func newTestReconciler(local, rem *fakeStore) (*Reconciler, *recordingNotifier) {
	n := &recordingNotifier{}
	r := newReconciler(local, rem, n)
	r.items, _ = local.Fetch(context.Background())
	return r, n
}

func product(id string, price int64) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, PriceCents: price}
}

func TestAddItemIncrementsInsteadOfDuplicating(t *testing.T) {
	local := &fakeStore{}
	r, _ := newTestReconciler(local, &fakeStore{})
	ctx := context.Background()

	require.NoError(t, r.AddItem(ctx, product("p1", 1999), 1))
	require.NoError(t, r.AddItem(ctx, product("p1", 1999), 1))

	snap := r.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, 2, snap.Items[0].Quantity)
	require.Len(t, local.snapshot(), 1)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	local := &fakeStore{}
	r, n := newTestReconciler(local, &fakeStore{})

	err := r.AddItem(context.Background(), product("p1", 1999), 0)

	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.Equal(t, 1, n.errorCount())
	require.Empty(t, local.snapshot())
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	local := &fakeStore{items: []domain.LineItem{{ID: "p1", Quantity: 2}}}
	r, n := newTestReconciler(local, &fakeStore{})

	err := r.SetQuantity(context.Background(), "p1", 0)

	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.Equal(t, 1, n.errorCount())
	require.Equal(t, 2, r.Snapshot().Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	local := &fakeStore{items: []domain.LineItem{
		{ID: "p1", Quantity: 1},
		{ID: "p2", Quantity: 1},
	}}
	r, _ := newTestReconciler(local, &fakeStore{})

	require.NoError(t, r.RemoveItem(context.Background(), "p1"))

	snap := r.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, "p2", snap.Items[0].ID)
}

func TestRemoveMissingItemIsNoOp(t *testing.T) {
	local := &fakeStore{items: []domain.LineItem{{ID: "p1", Quantity: 1}}}
	r, n := newTestReconciler(local, &fakeStore{})

	require.NoError(t, r.RemoveItem(context.Background(), "nope"))

	require.Len(t, r.Snapshot().Items, 1)
	require.Equal(t, 0, n.errorCount())
}

func TestClearEmptiesCartAndCache(t *testing.T) {
	local := &fakeStore{items: []domain.LineItem{{ID: "p1", Quantity: 3}}}
	r, _ := newTestReconciler(local, &fakeStore{})

	require.NoError(t, r.Clear(context.Background()))

	require.Empty(t, r.Snapshot().Items)
	require.Empty(t, local.snapshot())
}

func TestMutationFailureLeavesCacheIntact(t *testing.T) {
	rem := &fakeStore{
		items:  []domain.LineItem{{ID: "p1", Quantity: 2}},
		failOn: map[string]error{"p1": &remote.APIError{StatusCode: 500, Message: "out of stock"}},
	}
	r, n := newTestReconciler(&fakeStore{}, rem)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx))
	n.mu.Lock()
	n.errors = nil
	n.mu.Unlock()

	err := r.SetQuantity(ctx, "p1", 7)

	require.Error(t, err)
	require.Equal(t, 2, r.Snapshot().Items[0].Quantity)
	require.Equal(t, 1, n.errorCount())
	n.mu.Lock()
	require.Equal(t, "out of stock", n.errors[0])
	n.mu.Unlock()
}

func TestConcurrentMutationOnSameLineIsRejected(t *testing.T) {
	local := &fakeStore{blockAdd: make(chan struct{})}
	r, _ := newTestReconciler(local, &fakeStore{})
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- r.AddItem(ctx, product("p1", 100), 1)
	}()

	// Wait until the first mutation is registered as in flight.
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.inFlight["p1"]
	}, time.Second, time.Millisecond)

	err := r.AddItem(ctx, product("p1", 100), 1)
	require.ErrorIs(t, err, ErrBusy)

	close(local.blockAdd)
	require.NoError(t, <-firstDone)
	require.Equal(t, 1, r.Snapshot().Items[0].Quantity)
}

func TestSnapshotIsACopy(t *testing.T) {
	local := &fakeStore{items: []domain.LineItem{{ID: "p1", Quantity: 1}}}
	r, _ := newTestReconciler(local, &fakeStore{})

	snap := r.Snapshot()
	snap.Items[0].Quantity = 99

	require.Equal(t, 1, r.Snapshot().Items[0].Quantity)
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	local := &fakeStore{}
	r, _ := newTestReconciler(local, &fakeStore{})

	updates := make(chan Snapshot, 4)
	cancel := r.Subscribe(func(s Snapshot) { updates <- s })
	defer cancel()

	require.NoError(t, r.AddItem(context.Background(), product("p1", 100), 2))

	select {
	case snap := <-updates:
		require.Len(t, snap.Items, 1)
		require.Equal(t, 2, snap.Items[0].Quantity)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}
