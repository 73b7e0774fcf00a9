package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// OrderRepo owns ns_orders plus the per-order ns_order_items_* side
// partitions (write-only, layout compatibility).
type OrderRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *OrderRepo) load(ctx context.Context) []Order {
	out := []Order{}
	storage.LoadJSON(ctx, r.Store, storage.KeyOrders, &out)
	return out
}

func (r *OrderRepo) save(ctx context.Context, orders []Order) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeyOrders, orders)
}

// List returns all orders, most recent first.
func (r *OrderRepo) List(ctx context.Context) []Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := r.load(ctx)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (r *OrderRepo) ByCustomer(ctx context.Context, customerID string) []Order {
	out := []Order{}
	for _, o := range r.List(ctx) {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

func (r *OrderRepo) Find(ctx context.Context, id string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.load(ctx) {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrOrderNotFound
}

// Create snapshots the given cart lines into an immutable order with status
// "completed". Clearing the cart is the caller's job, after this returns.
func (r *OrderRepo) Create(ctx context.Context, customerID string, items []CartItem, total float64) (Order, error) {
	if customerID == "" || len(items) == 0 {
		return Order{}, ErrMissingFields
	}
	now := time.Now().UTC()
	o := Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      make([]OrderItem, 0, len(items)),
		Total:      total,
		Status:     StatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, it := range items {
		o.Items = append(o.Items, OrderItem{
			PlantID:  it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Qty,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	orders := append([]Order{o}, r.load(ctx)...)
	if err := r.save(ctx, orders); err != nil {
		return Order{}, err
	}
	// side partition with the raw cart lines
	_ = storage.SaveJSON(ctx, r.Store, fmt.Sprintf(storage.KeyOrderItems, o.ID), items)
	return o, nil
}

// UpdateStatus overwrites status and updatedAt unconditionally: no forward
// check here (see CanTransition).
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := r.load(ctx)
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = status
		orders[i].UpdatedAt = time.Now().UTC()
		if err := r.save(ctx, orders); err != nil {
			return Order{}, err
		}
		return orders[i], nil
	}
	return Order{}, ErrOrderNotFound
}

type OrderStats struct {
	TotalOrders     int     `json:"totalOrders"`
	CompletedOrders int     `json:"completedOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// Stats recomputes from scratch on every call; there is no cached aggregate.
func (r *OrderRepo) Stats(ctx context.Context) OrderStats {
	st := OrderStats{}
	for _, o := range r.List(ctx) {
		st.TotalOrders++
		if o.Status == StatusCompleted {
			st.CompletedOrders++
			st.TotalRevenue += o.Total
		}
	}
	st.TotalRevenue = math.Round(st.TotalRevenue*100) / 100
	return st
}
