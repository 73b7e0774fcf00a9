package market

import (
	"context"
	"sync"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// maxCartQty caps a single cart line.
const maxCartQty = 999

// CartRepo owns ns_cart: one shared pre-checkout collection, not scoped per
// customer.
type CartRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *CartRepo) load(ctx context.Context) []CartItem {
	out := []CartItem{}
	storage.LoadJSON(ctx, r.Store, storage.KeyCart, &out)
	return out
}

func (r *CartRepo) save(ctx context.Context, items []CartItem) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeyCart, items)
}

func (r *CartRepo) Items(ctx context.Context) []CartItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Add appends the line or merges qty into an existing one for the same plant.
func (r *CartRepo) Add(ctx context.Context, item CartItem) error {
	if item.ID == "" {
		return ErrMissingFields
	}
	if item.Qty <= 0 {
		item.Qty = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.load(ctx)
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Qty += item.Qty
			if items[i].Qty > maxCartQty {
				items[i].Qty = maxCartQty
			}
			return r.save(ctx, items)
		}
	}
	return r.save(ctx, append(items, item))
}

func (r *CartRepo) UpdateQty(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	if qty > maxCartQty {
		qty = maxCartQty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.load(ctx)
	for i := range items {
		if items[i].ID == id {
			items[i].Qty = qty
			return r.save(ctx, items)
		}
	}
	return ErrNotFound
}

func (r *CartRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.load(ctx)
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return r.save(ctx, kept)
}

func (r *CartRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, []CartItem{})
}

func (r *CartRepo) Count(ctx context.Context) int {
	n := 0
	for _, it := range r.Items(ctx) {
		n += it.Qty
	}
	return n
}

func (r *CartRepo) Total(ctx context.Context) float64 {
	var total float64
	for _, it := range r.Items(ctx) {
		total += it.Price * float64(it.Qty)
	}
	return total
}
