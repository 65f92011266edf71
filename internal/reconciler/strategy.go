package reconciler

import (
	"context"

	"cartbridge/internal/domain"
	"cartbridge/internal/localstore"
	"cartbridge/internal/remote"
)

// store is the backend strategy the reconciler routes through. Exactly one
// implementation is current at a time, selected on auth transitions.
type store interface {
	Fetch(ctx context.Context) ([]domain.LineItem, error)
	Add(ctx context.Context, line domain.LineItem) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// localStrategy owns the anonymous cart: every mutation rewrites the
// persisted file so the cart survives restarts.
type localStrategy struct {
	store *localstore.Store
}

func (s *localStrategy) Fetch(_ context.Context) ([]domain.LineItem, error) {
	return s.store.Load()
}

func (s *localStrategy) Add(_ context.Context, line domain.LineItem) error {
	items, err := s.store.Load()
	if err != nil {
		return err
	}
	return s.store.Save(domain.AddLine(items, line))
}

func (s *localStrategy) SetQuantity(_ context.Context, productID string, quantity int) error {
	items, err := s.store.Load()
	if err != nil {
		return err
	}
	i := domain.FindLine(items, productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	items[i].Quantity = quantity
	return s.store.Save(items)
}

func (s *localStrategy) Remove(_ context.Context, productID string) error {
	items, err := s.store.Load()
	if err != nil {
		return err
	}
	// Removing a line that is not there is a no-op.
	out := items[:0]
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return s.store.Save(out)
}

func (s *localStrategy) Clear(_ context.Context) error {
	return s.store.Save(nil)
}

// remoteStrategy is a read-through view of the server-owned cart: mutations
// are remote calls and the caller re-fetches afterwards, never computing the
// result optimistically.
type remoteStrategy struct {
	client *remote.Client
}

func (s *remoteStrategy) Fetch(ctx context.Context) ([]domain.LineItem, error) {
	return s.client.FetchCart(ctx)
}

func (s *remoteStrategy) Add(ctx context.Context, line domain.LineItem) error {
	// The server resolves the line against its own catalog; only the id and
	// quantity delta travel.
	return s.client.AddItem(ctx, line.ID, line.Quantity)
}

func (s *remoteStrategy) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return s.client.SetQuantity(ctx, productID, quantity)
}

func (s *remoteStrategy) Remove(ctx context.Context, productID string) error {
	return s.client.RemoveItem(ctx, productID)
}

func (s *remoteStrategy) Clear(ctx context.Context) error {
	return s.client.Clear(ctx)
}
