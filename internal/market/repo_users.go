package market

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// SellerRepo owns ns_sellers.
type SellerRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *SellerRepo) load(ctx context.Context) []Seller {
	out := []Seller{}
	storage.LoadJSON(ctx, r.Store, storage.KeySellers, &out)
	return out
}

func (r *SellerRepo) save(ctx context.Context, sellers []Seller) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeySellers, sellers)
}

func (r *SellerRepo) List(ctx context.Context) []Seller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *SellerRepo) Find(ctx context.Context, id string) (Seller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.load(ctx) {
		if s.ID == id {
			return s, nil
		}
	}
	return Seller{}, ErrUserNotFound
}

// FindByCredentials matches email plus already-encoded password in one pass,
// so a missing account and a wrong password fail identically.
func (r *SellerRepo) FindByCredentials(ctx context.Context, email, encodedPW string) (Seller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.load(ctx) {
		if s.Email == email && s.Password == encodedPW {
			return s, nil
		}
	}
	return Seller{}, ErrInvalidCredentials
}

// Create enforces email uniqueness within sellers.
func (r *SellerRepo) Create(ctx context.Context, s Seller) (Seller, error) {
	if s.Name == "" || s.Email == "" || s.Password == "" {
		return Seller{}, ErrMissingFields
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sellers := r.load(ctx)
	for _, existing := range sellers {
		if existing.Email == s.Email {
			return Seller{}, ErrDuplicateEmail
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	sellers = append([]Seller{s}, sellers...)
	if err := r.save(ctx, sellers); err != nil {
		return Seller{}, err
	}
	return s, nil
}

type SellerPatch struct {
	Name  *string
	Email *string
	Bio   *string
}

func (r *SellerRepo) Update(ctx context.Context, id string, patch SellerPatch) (Seller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sellers := r.load(ctx)
	for i := range sellers {
		if sellers[i].ID != id {
			continue
		}
		if patch.Name != nil {
			sellers[i].Name = *patch.Name
		}
		if patch.Email != nil {
			sellers[i].Email = *patch.Email
		}
		if patch.Bio != nil {
			sellers[i].Bio = *patch.Bio
		}
		if err := r.save(ctx, sellers); err != nil {
			return Seller{}, err
		}
		return sellers[i], nil
	}
	return Seller{}, ErrUserNotFound
}

func (r *SellerRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sellers := r.load(ctx)
	kept := sellers[:0]
	for _, s := range sellers {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sellers) {
		return false, nil
	}
	return true, r.save(ctx, kept)
}

// CustomerRepo owns ns_customers.
type CustomerRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *CustomerRepo) load(ctx context.Context) []Customer {
	out := []Customer{}
	storage.LoadJSON(ctx, r.Store, storage.KeyCustomers, &out)
	return out
}

func (r *CustomerRepo) save(ctx context.Context, customers []Customer) error {
	return storage.SaveJSON(ctx, r.Store, storage.KeyCustomers, customers)
}

func (r *CustomerRepo) List(ctx context.Context) []Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *CustomerRepo) Find(ctx context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.load(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, ErrUserNotFound
}

func (r *CustomerRepo) FindByCredentials(ctx context.Context, email, encodedPW string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.load(ctx) {
		if c.Email == email && c.Password == encodedPW {
			return c, nil
		}
	}
	return Customer{}, ErrInvalidCredentials
}

func (r *CustomerRepo) Create(ctx context.Context, c Customer) (Customer, error) {
	if c.Name == "" || c.Email == "" || c.Password == "" {
		return Customer{}, ErrMissingFields
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	for _, existing := range customers {
		if existing.Email == c.Email {
			return Customer{}, ErrDuplicateEmail
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Saved == nil {
		c.Saved = []string{}
	}
	if c.Orders == nil {
		c.Orders = []string{}
	}
	c.CreatedAt = time.Now().UTC()
	customers = append([]Customer{c}, customers...)
	if err := r.save(ctx, customers); err != nil {
		return Customer{}, err
	}
	return c, nil
}

type CustomerPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (r *CustomerRepo) Update(ctx context.Context, id string, patch CustomerPatch) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	for i := range customers {
		if customers[i].ID != id {
			continue
		}
		if patch.Name != nil {
			customers[i].Name = *patch.Name
		}
		if patch.Email != nil {
			customers[i].Email = *patch.Email
		}
		if patch.Phone != nil {
			customers[i].Phone = *patch.Phone
		}
		if patch.Address != nil {
			customers[i].Address = *patch.Address
		}
		if err := r.save(ctx, customers); err != nil {
			return Customer{}, err
		}
		return customers[i], nil
	}
	return Customer{}, ErrUserNotFound
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	kept := customers[:0]
	for _, c := range customers {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(customers) {
		return false, nil
	}
	return true, r.save(ctx, kept)
}

// SavePlant adds plantID to the customer's wishlist, once.
func (r *CustomerRepo) SavePlant(ctx context.Context, customerID, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	for i := range customers {
		if customers[i].ID != customerID {
			continue
		}
		for _, pid := range customers[i].Saved {
			if pid == plantID {
				return nil
			}
		}
		customers[i].Saved = append(customers[i].Saved, plantID)
		return r.save(ctx, customers)
	}
	return ErrUserNotFound
}

func (r *CustomerRepo) UnsavePlant(ctx context.Context, customerID, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	for i := range customers {
		if customers[i].ID != customerID {
			continue
		}
		kept := customers[i].Saved[:0]
		for _, pid := range customers[i].Saved {
			if pid != plantID {
				kept = append(kept, pid)
			}
		}
		customers[i].Saved = kept
		return r.save(ctx, customers)
	}
	return ErrUserNotFound
}

// StripSavedRefs drops plantID from every customer's wishlist; part of the
// plant cascade delete.
func (r *CustomerRepo) StripSavedRefs(ctx context.Context, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	for i := range customers {
		kept := customers[i].Saved[:0]
		for _, pid := range customers[i].Saved {
			if pid != plantID {
				kept = append(kept, pid)
			}
		}
		customers[i].Saved = kept
	}
	return r.save(ctx, customers)
}

// Notify prepends a notification for every customer matched by keep.
// Returns how many customers were notified.
func (r *CustomerRepo) Notify(ctx context.Context, keep func(Customer) bool, n Notification) (int, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := r.load(ctx)
	notified := 0
	for i := range customers {
		if !keep(customers[i]) {
			continue
		}
		customers[i].Notifications = append([]Notification{n}, customers[i].Notifications...)
		notified++
	}
	if notified == 0 {
		return 0, nil
	}
	return notified, r.save(ctx, customers)
}
