// Package fallback is the always-available key-value store the storefront
// writes through regardless of whether the remote database is reachable.
// Values are JSON documents under fixed keys (see internal/redisx for the
// key layout). Malformed stored data is treated as absent, never surfaced.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

var ErrNotFound = errors.New("fallback: key not found")

type Store interface {
	// Load unmarshals the value at key into dest. Missing or malformed
	// data yields ErrNotFound.
	Load(ctx context.Context, key string, dest any) error
	Save(ctx context.Context, key string, value any) error
	Clear(ctx context.Context, key string) error
}

func decode(key string, raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("fallback: malformed value at %s, treating as absent: %v", key, err)
		return ErrNotFound
	}
	return nil
}

// Append loads the collection at key, appends item and saves it back. Used
// for the leads/orders backup collections which are append-only.
func Append[T any](ctx context.Context, s Store, key string, item T) error {
	var items []T
	if err := s.Load(ctx, key, &items); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	items = append(items, item)
	return s.Save(ctx, key, items)
}
