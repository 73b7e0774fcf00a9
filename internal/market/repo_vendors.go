package market

import (
	"context"
	"sync"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// VendorRepo owns ns_vendors, the curated directory shown on detail pages.
type VendorRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func (r *VendorRepo) List(ctx context.Context) []Vendor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Vendor{}
	storage.LoadJSON(ctx, r.Store, storage.KeyVendors, &out)
	return out
}

func (r *VendorRepo) Replace(ctx context.Context, vendors []Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return storage.SaveJSON(ctx, r.Store, storage.KeyVendors, vendors)
}
