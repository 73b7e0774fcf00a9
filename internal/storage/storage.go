// Package storage is the persistence boundary: a string-keyed store of JSON
// text, one value per logical collection. Values are whole-collection blobs;
// there are no partial or indexed updates.
package storage

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Store is the single source of truth. Set must be durable on return; there
// is no write grouping across keys, so a crash between two related writes can
// leave cross-entity state inconsistent (known limitation).
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON reads key and decodes into out. Missing keys, backend failures and
// corrupt text all leave out at its caller-provided fallback value; the
// failure is logged, never surfaced.
func LoadJSON(ctx context.Context, s Store, key string, out any) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage: get failed, using fallback")
		return
	}
	if !ok || raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage: corrupt value, using fallback")
	}
}

// SaveJSON encodes v and writes it under key in one shot.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(b))
}
