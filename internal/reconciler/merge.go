package reconciler

import (
	"context"
	"fmt"

	"cartbridge/internal/domain"
)

// Login switches the reconciler to the remote backend. When the anonymous
// cart is non-empty the merge protocol runs first: one remote fetch, then per
// local line a quantity-summing update (line exists remotely) or an add (it
// does not), processed sequentially against that single snapshot. The merge
// is best-effort: a failed line is counted and reported, the rest continue.
// Lines that merged successfully are dropped from the local file; failed ones
// stay behind so they are not lost.
//
// With an empty anonymous cart no merge calls are issued; the cache is
// populated from a single remote fetch.
func (r *Reconciler) Login(ctx context.Context) error {
	r.mu.Lock()
	if r.authenticated {
		r.mu.Unlock()
		return nil
	}
	if r.busy || len(r.inFlight) > 0 {
		r.mu.Unlock()
		r.notifier.Error("cart is busy, try again")
		return ErrBusy
	}
	r.busy = true
	r.loading++
	localItems := make([]domain.LineItem, len(r.items))
	copy(localItems, r.items)
	r.mu.Unlock()
	defer r.endExclusive()

	failed := 0
	if len(localItems) > 0 {
		remoteItems, err := r.remote.Fetch(ctx)
		if err != nil {
			r.notifier.Error(userMessage(err))
			return fmt.Errorf("fetch remote cart before merge: %w", err)
		}

		var unmerged []domain.LineItem
		for _, item := range localItems {
			var opErr error
			if i := domain.FindLine(remoteItems, item.ID); i >= 0 {
				opErr = r.remote.SetQuantity(ctx, item.ID, remoteItems[i].Quantity+item.Quantity)
			} else {
				opErr = r.remote.Add(ctx, item)
			}
			if opErr != nil {
				failed++
				unmerged = append(unmerged, item)
			}
		}

		// Rewrite the local file with only the lines that did not make it,
		// so a merged line can never be merged twice on a later login.
		if err := r.local.Clear(ctx); err == nil {
			for _, item := range unmerged {
				if addErr := r.local.Add(ctx, item); addErr != nil {
					break
				}
			}
		}
	}

	items, fetchErr := r.remote.Fetch(ctx)

	r.mu.Lock()
	r.current = r.remote
	r.authenticated = true
	if fetchErr == nil {
		r.items = items
	}
	r.publishLocked()
	r.mu.Unlock()

	switch {
	case fetchErr != nil:
		r.notifier.Error(userMessage(fetchErr))
		return fmt.Errorf("reload cart after login: %w", fetchErr)
	case failed > 0:
		r.notifier.Error(fmt.Sprintf("signed in, but %d cart item(s) could not be merged", failed))
	case len(localItems) > 0:
		r.notifier.Info("signed in, cart merged")
	default:
		r.notifier.Info("signed in")
	}
	return nil
}

// Logout switches back to the anonymous backend. The local file is re-read as
// it was persisted; nothing from the remote cart is merged back into it.
func (r *Reconciler) Logout(ctx context.Context) error {
	r.mu.Lock()
	if !r.authenticated {
		r.mu.Unlock()
		return nil
	}
	if r.busy || len(r.inFlight) > 0 {
		r.mu.Unlock()
		r.notifier.Error("cart is busy, try again")
		return ErrBusy
	}
	r.busy = true
	r.loading++
	r.mu.Unlock()
	defer r.endExclusive()

	items, err := r.local.Fetch(ctx)
	if err != nil {
		r.notifier.Error(userMessage(err))
		return fmt.Errorf("reload local cart: %w", err)
	}

	r.mu.Lock()
	r.current = r.local
	r.authenticated = false
	r.items = items
	r.publishLocked()
	r.mu.Unlock()

	r.notifier.Info("signed out")
	return nil
}
