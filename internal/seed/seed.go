// Package seed bootstraps demo data on first run: each collection is written
// only when its key is absent, so existing data is never overwritten.
package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/storage"
)

func EnsureDemoData(ctx context.Context, store storage.Store) error {
	now := time.Now().UTC()
	demoPW := auth.EncodePassword("demo")

	if absent(ctx, store, storage.KeyPlants) {
		plants := []market.Plant{
			{
				ID: "tree0001", Name: "Neem", Species: "Azadirachta indica",
				Price: 299, Stock: 12, Type: "trees",
				Tags: []string{"medicinal", "shade"},
				Info: "Hardy tree, good for large gardens",
				VendorID: "seller_demo_1", CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: "indoor0001", Name: "Snake Plant", Species: "Sansevieria trifasciata",
				Price: 249, Stock: 6, Type: "indoor",
				Tags: []string{"low-light", "air-purifying"},
				Info: "Low maintenance indoor plant",
				VendorID: "seller_demo_2", CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: "herb0001", Name: "Basil", Species: "Ocimum basilicum",
				Price: 39, Stock: 50, Type: "herbs",
				Tags: []string{"edible", "fragrant"},
				Info: "Great for kitchen gardens",
				VendorID: "seller_demo_1", CreatedAt: now, UpdatedAt: now,
			},
		}
		if err := storage.SaveJSON(ctx, store, storage.KeyPlants, plants); err != nil {
			return err
		}
		log.Info().Int("plants", len(plants)).Msg("seed: plants written")
	}

	if absent(ctx, store, storage.KeySellers) {
		sellers := []market.Seller{
			{
				ID: "seller_demo_1", Name: "GreenLeaf Nursery", Email: "green@demo",
				Password: demoPW, Bio: "Specializing in organic plants and trees",
				CreatedAt: now,
			},
			{
				ID: "seller_demo_2", Name: "IndoorPro Plants", Email: "indoor@demo",
				Password: demoPW, Bio: "Your indoor plant experts",
				CreatedAt: now,
			},
		}
		if err := storage.SaveJSON(ctx, store, storage.KeySellers, sellers); err != nil {
			return err
		}
	}

	if absent(ctx, store, storage.KeyCustomers) {
		customers := []market.Customer{
			{
				ID: "cust_demo_1", Name: "Alice Johnson", Email: "alice@demo",
				Password: demoPW, Phone: "+91 9876543210",
				Address: "123 Garden Street, Bangalore",
				Saved:   []string{}, Orders: []string{},
				CreatedAt: now,
			},
		}
		if err := storage.SaveJSON(ctx, store, storage.KeyCustomers, customers); err != nil {
			return err
		}
	}

	if absent(ctx, store, storage.KeyVendors) {
		vendors := []market.Vendor{
			{ID: "seller_demo_1", Name: "GreenLeaf Nursery", Location: "Pune", Rating: 4.5},
			{ID: "seller_demo_2", Name: "IndoorPro", Location: "Mumbai", Rating: 4.6},
		}
		if err := storage.SaveJSON(ctx, store, storage.KeyVendors, vendors); err != nil {
			return err
		}
	}

	return nil
}

func absent(ctx context.Context, store storage.Store, key string) bool {
	_, ok, err := store.Get(ctx, key)
	return err == nil && !ok
}
