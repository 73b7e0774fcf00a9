package market

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// PlantRepo owns the ns_plants collection. Every operation is a full
// read-modify-write of the collection; the mutex serializes that cycle so a
// concurrent host cannot lose updates.
type PlantRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *PlantRepo) load(ctx context.Context) []Plant {
	out := []Plant{}
	storage.LoadJSON(ctx, r.Store, storage.KeyPlants, &out)
	return out
}

func (r *PlantRepo) save(ctx context.Context, plants []Plant) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeyPlants, plants)
}

// List returns the collection in stored order: newest first, since Create
// prepends.
func (r *PlantRepo) List(ctx context.Context) []Plant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *PlantRepo) Find(ctx context.Context, id string) (Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.load(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return Plant{}, ErrPlantNotFound
}

func (r *PlantRepo) Create(ctx context.Context, p Plant) (Plant, error) {
	if p.Name == "" {
		return Plant{}, ErrMissingFields
	}
	if p.Price < 0 || p.Stock < 0 {
		return Plant{}, ErrInvalidInput
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	plants := append([]Plant{p}, r.load(ctx)...)
	if err := r.save(ctx, plants); err != nil {
		return Plant{}, err
	}
	return p, nil
}

// PlantPatch is an explicit field-level merge: nil leaves the stored value,
// non-nil overrides it.
type PlantPatch struct {
	Name    *string
	Species *string
	Price   *float64
	Stock   *int
	Type    *string
	Tags    *[]string
	Image   *string
	Info    *string
}

func (p *Plant) apply(patch PlantPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Species != nil {
		p.Species = *patch.Species
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Info != nil {
		p.Info = *patch.Info
	}
}

func (r *PlantRepo) Update(ctx context.Context, id string, patch PlantPatch) (Plant, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return Plant{}, ErrInvalidInput
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return Plant{}, ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	plants := r.load(ctx)
	for i := range plants {
		if plants[i].ID != id {
			continue
		}
		plants[i].apply(patch)
		plants[i].UpdatedAt = time.Now().UTC()
		if err := r.save(ctx, plants); err != nil {
			return Plant{}, err
		}
		return plants[i], nil
	}
	return Plant{}, ErrPlantNotFound
}

func (r *PlantRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plants := r.load(ctx)
	kept := plants[:0]
	for _, p := range plants {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plants) {
		return false, nil
	}
	return true, r.save(ctx, kept)
}

// ReserveStock decrements stock by qty inside one locked cycle. Stock moves
// one way here: cancelling the reservation later never adds it back.
func (r *PlantRepo) ReserveStock(ctx context.Context, id string, qty int) (Plant, error) {
	if qty <= 0 {
		return Plant{}, ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plants := r.load(ctx)
	for i := range plants {
		if plants[i].ID != id {
			continue
		}
		if plants[i].Stock < qty {
			return Plant{}, ErrInsufficientStock
		}
		plants[i].Stock -= qty
		plants[i].UpdatedAt = time.Now().UTC()
		if err := r.save(ctx, plants); err != nil {
			return Plant{}, err
		}
		return plants[i], nil
	}
	return Plant{}, ErrPlantNotFound
}

// ByVendor filters the collection on the owning seller.
func (r *PlantRepo) ByVendor(ctx context.Context, sellerID string) []Plant {
	out := []Plant{}
	for _, p := range r.List(ctx) {
		if p.VendorID == sellerID {
			out = append(out, p)
		}
	}
	return out
}
