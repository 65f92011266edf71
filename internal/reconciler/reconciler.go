// Package reconciler is the single authoritative interface to "the cart". It
// hides whether storage is the local file (anonymous) or the cart API
// (authenticated), runs the one-time merge when a session logs in with a
// non-empty anonymous cart, and exposes a snapshot consumers render from.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cartbridge/internal/domain"
	"cartbridge/internal/localstore"
	"cartbridge/internal/remote"
)

// ErrBusy is returned when a mutation targets a line that already has a
// mutation in flight, or when a cart-wide operation overlaps another one.
var ErrBusy = errors.New("cart update already in progress")

// Snapshot is the read model consumers render from. Items is a copy; mutating
// it does not touch the reconciler's state.
type Snapshot struct {
	Items         []domain.LineItem
	Loading       bool
	Authenticated bool
}

// Reconciler routes cart reads and mutations to the current backend strategy
// and keeps the exposed cache in sync with it. Safe for concurrent use.
type Reconciler struct {
	mu sync.Mutex

	local  store
	remote store

	current       store
	authenticated bool

	items    []domain.LineItem
	inFlight map[string]bool
	busy     bool // cart-wide operation (clear, login, logout) in progress
	loading  int

	notifier Notifier

	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a reconciler in the anonymous state, seeded from the persisted
// local cart.
func New(local *localstore.Store, client *remote.Client, notifier Notifier) (*Reconciler, error) {
	r := newReconciler(&localStrategy{store: local}, &remoteStrategy{client: client}, notifier)
	items, err := r.local.Fetch(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load local cart: %w", err)
	}
	r.items = items
	return r, nil
}

func newReconciler(local, remote store, notifier Notifier) *Reconciler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Reconciler{
		local:    local,
		remote:   remote,
		current:  local,
		inFlight: make(map[string]bool),
		notifier: notifier,
		subs:     make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current cart view.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() Snapshot {
	items := make([]domain.LineItem, len(r.items))
	copy(items, r.items)
	return Snapshot{
		Items:         items,
		Loading:       r.loading > 0,
		Authenticated: r.authenticated,
	}
}

// Subscribe registers a callback invoked after every cache change. The
// returned function cancels the subscription.
func (r *Reconciler) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Reconciler) publishLocked() {
	snap := r.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	// Callbacks run outside the lock so a subscriber may call back in.
	go func() {
		for _, fn := range fns {
			fn(snap)
		}
	}()
}

// AddItem adds the product to the cart, incrementing the existing line's
// quantity rather than duplicating it.
func (r *Reconciler) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		r.notifier.Error("quantity must be at least 1")
		return domain.ErrInvalidQuantity
	}
	return r.mutateLine(ctx, product.ID,
		func(ctx context.Context, s store) error {
			return s.Add(ctx, product.LineItemFrom(quantity))
		},
		fmt.Sprintf("%s added to cart", product.Name))
}

// RemoveItem removes one line. Removing an id that is not in the cart is a
// no-op, not an error.
func (r *Reconciler) RemoveItem(ctx context.Context, productID string) error {
	return r.mutateLine(ctx, productID,
		func(ctx context.Context, s store) error {
			err := s.Remove(ctx, productID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		},
		"item removed from cart")
}

// SetQuantity sets a line's quantity to an absolute value. Non-positive
// quantities are rejected; removal is a distinct operation.
func (r *Reconciler) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		r.notifier.Error("quantity must be at least 1")
		return domain.ErrInvalidQuantity
	}
	return r.mutateLine(ctx, productID,
		func(ctx context.Context, s store) error {
			return s.SetQuantity(ctx, productID, quantity)
		},
		"quantity updated")
}

// Clear empties the cart in the current backend.
func (r *Reconciler) Clear(ctx context.Context) error {
	s, err := r.beginExclusive()
	if err != nil {
		r.notifier.Error("cart is busy, try again")
		return err
	}
	defer r.endExclusive()

	if err := s.Clear(ctx); err != nil {
		r.notifier.Error(userMessage(err))
		return err
	}
	if err := r.refresh(ctx, s); err != nil {
		r.notifier.Error(userMessage(err))
		return err
	}
	r.notifier.Info("cart cleared")
	return nil
}

// mutateLine runs one line-scoped mutation against the current strategy with
// the per-line in-flight guard held, then refreshes the cache from the same
// strategy. On any failure the cache is left untouched and exactly one error
// notification is emitted.
func (r *Reconciler) mutateLine(ctx context.Context, productID string, op func(context.Context, store) error, okMsg string) error {
	s, err := r.beginLine(productID)
	if err != nil {
		r.notifier.Error("this item is already being updated")
		return err
	}
	defer r.endLine(productID)

	if err := op(ctx, s); err != nil {
		r.notifier.Error(userMessage(err))
		return err
	}
	if err := r.refresh(ctx, s); err != nil {
		r.notifier.Error(userMessage(err))
		return err
	}
	r.notifier.Info(okMsg)
	return nil
}

// refresh reloads the cache from the strategy the mutation ran against. A
// stale refresh (auth state changed mid-flight) is dropped.
func (r *Reconciler) refresh(ctx context.Context, s store) error {
	items, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != s {
		return nil
	}
	r.items = items
	r.publishLocked()
	return nil
}

func (r *Reconciler) beginLine(productID string) (store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy || r.inFlight[productID] {
		return nil, ErrBusy
	}
	r.inFlight[productID] = true
	r.loading++
	return r.current, nil
}

func (r *Reconciler) endLine(productID string) {
	r.mu.Lock()
	delete(r.inFlight, productID)
	r.loading--
	r.mu.Unlock()
}

func (r *Reconciler) beginExclusive() (store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy || len(r.inFlight) > 0 {
		return nil, ErrBusy
	}
	r.busy = true
	r.loading++
	return r.current, nil
}

func (r *Reconciler) endExclusive() {
	r.mu.Lock()
	r.busy = false
	r.loading--
	r.mu.Unlock()
}

// userMessage maps an error onto the notification text shown to the user:
// application failures carry the server message, everything else collapses to
// a generic connection failure.
func userMessage(err error) string {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var transportErr *remote.TransportError
	if errors.As(err, &transportErr) {
		return "could not reach the store, check your connection"
	}
	if errors.Is(err, domain.ErrNotFound) {
		return "item not found in cart"
	}
	return "something went wrong, please try again"
}
