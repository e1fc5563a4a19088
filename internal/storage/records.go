package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Records reads and writes JSON blobs on top of a Store.
type Records struct {
	store Store
}

// NewRecords wraps a store with JSON helpers.
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// LoadJSON decodes the record at key into dest. It returns ErrNotFound when the record is
// absent and an error wrapping ErrCorrupt when it can not be decoded.
func (r *Records) LoadJSON(ctx context.Context, key string, dest any) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return nil
}

// SaveJSON encodes value and writes it at key.
func (r *Records) SaveJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.store.Set(ctx, key, raw)
}

// LoadString returns a raw string record such as the bearer token.
func (r *Records) LoadString(ctx context.Context, key string) (string, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SaveString writes a raw string record.
func (r *Records) SaveString(ctx context.Context, key, value string) error {
	return r.store.Set(ctx, key, []byte(value))
}

// Delete removes the record at key; deleting a missing record is not an error.
func (r *Records) Delete(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
