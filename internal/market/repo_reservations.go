package market

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// ReservationRepo owns ns_reservations. A reservation is a stock hold made
// at creation time; deleting one does NOT restock the plant. The hold is
// spent, not returned.
type ReservationRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *ReservationRepo) load(ctx context.Context) []Reservation {
	out := []Reservation{}
	storage.LoadJSON(ctx, r.Store, storage.KeyReservations, &out)
	return out
}

func (r *ReservationRepo) save(ctx context.Context, res []Reservation) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeyReservations, res)
}

func (r *ReservationRepo) List(ctx context.Context) []Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *ReservationRepo) ByCustomer(ctx context.Context, customerID string) []Reservation {
	out := []Reservation{}
	for _, rec := range r.List(ctx) {
		if rec.CustomerID == customerID {
			out = append(out, rec)
		}
	}
	return out
}

func (r *ReservationRepo) Find(ctx context.Context, id string) (Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.load(ctx) {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Reservation{}, ErrNotFound
}

// Create prepends a pending reservation. The stock decrement happens before
// this, in PlantRepo.ReserveStock.
func (r *ReservationRepo) Create(ctx context.Context, customerID string, plant Plant, qty int) (Reservation, error) {
	rec := Reservation{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		PlantID:    plant.ID,
		PlantName:  plant.Name,
		Qty:        qty,
		Status:     ReservationPending,
		CreatedAt:  time.Now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res := append([]Reservation{rec}, r.load(ctx)...)
	if err := r.save(ctx, res); err != nil {
		return Reservation{}, err
	}
	return rec, nil
}

// Delete removes the record only; stock is untouched.
func (r *ReservationRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.load(ctx)
	kept := res[:0]
	for _, rec := range res {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(res) {
		return false, nil
	}
	return true, r.save(ctx, kept)
}

// DeleteByPlant drops every reservation referencing plantID; part of the
// plant cascade delete.
func (r *ReservationRepo) DeleteByPlant(ctx context.Context, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.load(ctx)
	kept := res[:0]
	for _, rec := range res {
		if rec.PlantID != plantID {
			kept = append(kept, rec)
		}
	}
	return r.save(ctx, kept)
}
