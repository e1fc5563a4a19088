package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/google/uuid"
)

// CartRepository is the persistence surface of the engine. Mutations receive the current
// list and return the list the engine should hold afterwards.
type CartRepository interface {
	Mode() enums.CartMode
	Load(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, current []Item, line Line) ([]Item, error)
	Remove(ctx context.Context, current []Item, itemID string) ([]Item, error)
	Update(ctx context.Context, current []Item, itemID string, quantity int) ([]Item, error)
	Clear(ctx context.Context) error
}

// LocalRepository keeps a guest cart in the session's local store under the cart key.
type LocalRepository struct {
	records *storage.Records
	logg    *logger.Logger
	newID   func() string
}

// NewLocalRepository binds a guest cart to a session store.
func NewLocalRepository(store storage.Store, logg *logger.Logger) *LocalRepository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LocalRepository{records: storage.NewRecords(store), logg: logg, newID: newItemID}
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (r *LocalRepository) Mode() enums.CartMode {
	return enums.CartModeGuest
}

// Load returns the persisted guest cart. A missing or corrupt record yields an empty cart;
// the corrupt record is left in place.
func (r *LocalRepository) Load(ctx context.Context) ([]Item, error) {
	var items []Item
	err := r.records.LoadJSON(ctx, storage.KeyCart, &items)
	switch {
	case err == nil:
		return cloneItems(items), nil
	case errors.Is(err, storage.ErrNotFound):
		return []Item{}, nil
	case errors.Is(err, storage.ErrCorrupt):
		r.logg.Error(ctx, "stored guest cart is corrupt, starting empty", err)
		return []Item{}, nil
	default:
		return nil, fmt.Errorf("load guest cart: %w", err)
	}
}

// Add merges into the line with the same product, size and color, or appends a new line.
func (r *LocalRepository) Add(ctx context.Context, current []Item, line Line) ([]Item, error) {
	next := cloneItems(current)
	merged := false
	for i := range next {
		if next[i].sameVariant(line.Product.ID, line.Size, line.Color) {
			next[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, Item{
			ID:            r.newID(),
			ProductID:     line.Product.ID,
			Quantity:      line.Quantity,
			SelectedSize:  line.Size,
			SelectedColor: copyColor(line.Color),
			Product:       line.Product,
		})
	}
	r.persist(ctx, next)
	return next, nil
}

func (r *LocalRepository) Remove(ctx context.Context, current []Item, itemID string) ([]Item, error) {
	next := make([]Item, 0, len(current))
	for _, item := range current {
		if item.ID != itemID {
			next = append(next, item)
		}
	}
	r.persist(ctx, next)
	return next, nil
}

func (r *LocalRepository) Update(ctx context.Context, current []Item, itemID string, quantity int) ([]Item, error) {
	next := cloneItems(current)
	for i := range next {
		if next[i].ID == itemID {
			next[i].Quantity = quantity
		}
	}
	r.persist(ctx, next)
	return next, nil
}

// Clear deletes the guest cart record.
func (r *LocalRepository) Clear(ctx context.Context) error {
	if err := r.records.Delete(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}

// persist writes the whole list back. An empty list is never written, so emptying the cart
// by removing lines leaves the previous record behind; only Clear deletes it.
func (r *LocalRepository) persist(ctx context.Context, items []Item) {
	if len(items) == 0 {
		return
	}
	if err := r.records.SaveJSON(ctx, storage.KeyCart, items); err != nil {
		r.logg.Error(ctx, "failed to persist guest cart", err)
	}
}

func copyColor(c *catalog.Color) *catalog.Color {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// RemoteAPI is the slice of the API client the authenticated cart needs.
type RemoteAPI interface {
	GetCart(ctx context.Context) ([]apiclient.CartItem, error)
	AddToCart(ctx context.Context, req apiclient.AddToCartRequest) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// RemoteRepository keeps the cart on the server and refetches it whole after every mutation.
type RemoteRepository struct {
	api RemoteAPI
}

func NewRemoteRepository(api RemoteAPI) *RemoteRepository {
	return &RemoteRepository{api: api}
}

func (r *RemoteRepository) Mode() enums.CartMode {
	return enums.CartModeAuthenticated
}

func (r *RemoteRepository) Load(ctx context.Context) ([]Item, error) {
	remote, err := r.api.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(remote))
	for _, item := range remote {
		items = append(items, Item{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
			Product:       item.Product,
		})
	}
	return items, nil
}

func (r *RemoteRepository) Add(ctx context.Context, _ []Item, line Line) ([]Item, error) {
	err := r.api.AddToCart(ctx, apiclient.AddToCartRequest{
		ProductID:     line.Product.ID,
		Quantity:      line.Quantity,
		SelectedSize:  line.Size,
		SelectedColor: line.Color,
	})
	if err != nil {
		return nil, err
	}
	return r.Load(ctx)
}

func (r *RemoteRepository) Remove(ctx context.Context, _ []Item, itemID string) ([]Item, error) {
	if err := r.api.RemoveCartItem(ctx, itemID); err != nil {
		return nil, err
	}
	return r.Load(ctx)
}

func (r *RemoteRepository) Update(ctx context.Context, _ []Item, itemID string, quantity int) ([]Item, error) {
	if err := r.api.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return nil, err
	}
	return r.Load(ctx)
}

func (r *RemoteRepository) Clear(ctx context.Context) error {
	return r.api.ClearCart(ctx)
}
