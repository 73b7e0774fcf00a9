package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenleaf/nursery-market/internal/storage"
)

// ReviewRepo maps plant id -> review sequence, one storage partition per
// plant (ns_reviews_{plant_id}) instead of a single global collection.
type ReviewRepo struct {
	Store storage.Store

	mu sync.Mutex
}

func reviewKey(plantID string) string {
	return fmt.Sprintf(storage.KeyReviews, plantID)
}

func (r *ReviewRepo) List(ctx context.Context, plantID string) []Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Review{}
	storage.LoadJSON(ctx, r.Store, reviewKey(plantID), &out)
	return out
}

// Add prepends a review to the plant's partition. An empty reviewer name
// becomes "Anonymous".
func (r *ReviewRepo) Add(ctx context.Context, plantID, name, text string) (Review, error) {
	if text == "" {
		return Review{}, ErrMissingFields
	}
	if name == "" {
		name = "Anonymous"
	}
	rec := Review{
		ID:        uuid.NewString(),
		Name:      name,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reviewKey(plantID)
	reviews := []Review{}
	storage.LoadJSON(ctx, r.Store, key, &reviews)
	reviews = append([]Review{rec}, reviews...)
	if err := storage.SaveJSON(ctx, r.Store, key, reviews); err != nil {
		return Review{}, err
	}
	return rec, nil
}

// DeleteAll removes the whole partition; part of the plant cascade delete.
func (r *ReviewRepo) DeleteAll(ctx context.Context, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Store.Delete(ctx, reviewKey(plantID))
}
