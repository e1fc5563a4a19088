package storage

import (
	"context"
	"errors"
	"strings"
)

// Well-known record keys of a session's local store.
const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyOrders   = "orders"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrCorrupt is returned when a stored record can not be decoded.
	ErrCorrupt = errors.New("storage: record is corrupt")
)

// Backend persists raw records grouped by namespace. Writes are last-write-wins.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Store is one session's view of a backend, the equivalent of a browser's local storage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type scopedStore struct {
	backend   Backend
	namespace string
}

// Scope binds a backend to one namespace.
func Scope(backend Backend, namespace string) Store {
	return &scopedStore{backend: backend, namespace: strings.TrimSpace(namespace)}
}

func (s *scopedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *scopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.namespace, key)
}
