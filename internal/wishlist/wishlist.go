package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Store is a session's saved products, kept only in the local store. Products are unique
// by id and keep insertion order.
type Store struct {
	records  *storage.Records
	notifier notifications.Notifier
	logg     *logger.Logger

	mu    sync.RWMutex
	items []catalog.Product
}

// NewStore binds a wishlist to a session store. notifier may be nil.
func NewStore(store storage.Store, notifier notifications.Notifier, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("wishlist store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		records:  storage.NewRecords(store),
		notifier: notifier,
		logg:     logg,
		items:    []catalog.Product{},
	}, nil
}

// Load replaces the in-memory list with the persisted one. A corrupt record is logged,
// deleted, and treated as an empty wishlist.
func (s *Store) Load(ctx context.Context) error {
	var items []catalog.Product
	err := s.records.LoadJSON(ctx, storage.KeyWishlist, &items)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		items = nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logg.Error(ctx, "stored wishlist is corrupt, resetting", err)
		items = nil
		if delErr := s.records.Delete(ctx, storage.KeyWishlist); delErr != nil {
			s.logg.Error(ctx, "failed to delete corrupt wishlist", delErr)
		}
	default:
		return fmt.Errorf("load wishlist: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = dedupe(items)
	return nil
}

// AddItem saves a product; saving it again is a no-op.
func (s *Store) AddItem(ctx context.Context, product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.items, product.ID) >= 0 {
		return nil
	}
	prev := s.items
	s.items = append(s.items[:len(s.items):len(s.items)], product)
	if err := s.persistLocked(ctx); err != nil {
		s.items = prev
		return err
	}
	s.notify(ctx, fmt.Sprintf("Added %s to wishlist", product.Name))
	return nil
}

// RemoveItem drops a product; unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.items, productID)
	if idx < 0 {
		return nil
	}
	name := s.items[idx].Name
	prev := s.items
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		s.items = prev
		return err
	}
	s.notify(ctx, fmt.Sprintf("Removed %s from wishlist", name))
	return nil
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.items, productID) >= 0
}

// ClearWishlist empties the list and persists the empty list.
func (s *Store) ClearWishlist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.items
	s.items = []catalog.Product{}
	if err := s.persistLocked(ctx); err != nil {
		s.items = prev
		return err
	}
	return nil
}

// Items returns a copy of the saved products.
func (s *Store) Items() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Product{}, s.items...)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// persistLocked writes the list back, including when it is empty.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.records.SaveJSON(ctx, storage.KeyWishlist, s.items); err != nil {
		s.logg.Error(ctx, "failed to persist wishlist", err)
		return fmt.Errorf("persist wishlist: %w", err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, message string) {
	if s.notifier != nil {
		notifications.Success(ctx, s.notifier, message)
	}
}

func indexOf(items []catalog.Product, productID string) int {
	for i, item := range items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func dedupe(items []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(items))
	for _, item := range items {
		if indexOf(out, item.ID) < 0 {
			out = append(out, item)
		}
	}
	return out
}
