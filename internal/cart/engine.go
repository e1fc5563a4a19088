package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Params wires an engine.
type Params struct {
	Guest         CartRepository
	Authenticated CartRepository
	Notifier      notifications.Notifier
	Logger        *logger.Logger
	Metrics       *metrics.Storefront
}

// Engine owns the cart of one session. Mutations run one at a time, including the remote
// call and refetch of an authenticated cart, so refetches never interleave.
type Engine struct {
	guest    CartRepository
	authed   CartRepository
	notifier notifications.Notifier
	logg     *logger.Logger
	metrics  *metrics.Storefront

	opMu sync.Mutex

	mu    sync.RWMutex
	repo  CartRepository
	items []Item
}

// NewEngine builds an engine in guest mode with an empty cart. Call Load to hydrate it.
func NewEngine(p Params) (*Engine, error) {
	if p.Guest == nil {
		return nil, fmt.Errorf("guest cart repository required")
	}
	if p.Authenticated == nil {
		return nil, fmt.Errorf("authenticated cart repository required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{
		guest:    p.Guest,
		authed:   p.Authenticated,
		notifier: p.Notifier,
		logg:     logg,
		metrics:  p.Metrics,
		repo:     p.Guest,
		items:    []Item{},
	}, nil
}

// Items returns a copy of the current lines.
func (e *Engine) Items() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneItems(e.items)
}

func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ItemCount(e.items)
}

func (e *Engine) Subtotal() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Subtotal(e.items)
}

func (e *Engine) Mode() enums.CartMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.repo.Mode()
}

// Load hydrates the cart from the active repository. On failure the cart is left empty.
func (e *Engine) Load(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.loadLocked(ctx)
}

// SetAuthenticated selects the repository for the auth state and re-hydrates when it changed.
func (e *Engine) SetAuthenticated(ctx context.Context, authenticated bool) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	next := e.guest
	if authenticated {
		next = e.authed
	}
	e.mu.Lock()
	changed := e.repo != next
	e.repo = next
	e.mu.Unlock()
	if !changed {
		return nil
	}
	return e.loadLocked(ctx)
}

func (e *Engine) loadLocked(ctx context.Context) error {
	repo := e.currentRepo()
	items, err := repo.Load(ctx)
	if err != nil {
		e.logg.Error(e.logCtx(ctx, repo, "load"), "failed to load cart", err)
		e.setItems(nil)
		return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, "load cart")
	}
	e.setItems(items)
	return nil
}

// AddItem adds quantity units of a product variant and announces it.
func (e *Engine) AddItem(ctx context.Context, product catalog.Product, quantity int, size string, color *catalog.Color) error {
	if quantity <= 0 {
		err := pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		notifications.Error(ctx, e.notifier, "Quantity must be at least 1")
		e.metrics.IncCartMutation("add", e.Mode().String(), err)
		return err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	repo := e.currentRepo()
	next, err := repo.Add(ctx, e.Items(), Line{Product: product, Quantity: quantity, Size: size, Color: color})
	e.metrics.IncCartMutation("add", repo.Mode().String(), err)
	if err != nil {
		e.logg.Error(e.logCtx(ctx, repo, "add"), "failed to add item to cart", err)
		notifications.Error(ctx, e.notifier, "Failed to add item to cart")
		return err
	}
	e.setItems(next)
	notifications.Success(ctx, e.notifier, addedMessage(product.Name, size, color))
	return nil
}

// RemoveItem drops a line. Unknown ids leave a guest cart unchanged.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.removeLocked(ctx, itemID)
}

func (e *Engine) removeLocked(ctx context.Context, itemID string) error {
	repo := e.currentRepo()
	next, err := repo.Remove(ctx, e.Items(), itemID)
	e.metrics.IncCartMutation("remove", repo.Mode().String(), err)
	if err != nil {
		e.logg.Error(e.logCtx(ctx, repo, "remove"), "failed to remove cart item", err)
		notifications.Error(ctx, e.notifier, "Failed to remove item from cart")
		return err
	}
	e.setItems(next)
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if quantity <= 0 {
		return e.removeLocked(ctx, itemID)
	}

	repo := e.currentRepo()
	next, err := repo.Update(ctx, e.Items(), itemID, quantity)
	e.metrics.IncCartMutation("update", repo.Mode().String(), err)
	if err != nil {
		e.logg.Error(e.logCtx(ctx, repo, "update"), "failed to update cart item", err)
		notifications.Error(ctx, e.notifier, "Failed to update cart")
		return err
	}
	e.setItems(next)
	return nil
}

// ClearCart empties the cart; a guest cart's record is deleted.
func (e *Engine) ClearCart(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	repo := e.currentRepo()
	err := repo.Clear(ctx)
	e.metrics.IncCartMutation("clear", repo.Mode().String(), err)
	if err != nil {
		e.logg.Error(e.logCtx(ctx, repo, "clear"), "failed to clear cart", err)
		notifications.Error(ctx, e.notifier, "Failed to clear cart")
		return err
	}
	e.setItems(nil)
	return nil
}

func (e *Engine) currentRepo() CartRepository {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.repo
}

func (e *Engine) setItems(items []Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = cloneItems(items)
}

func (e *Engine) logCtx(ctx context.Context, repo CartRepository, op string) context.Context {
	return e.logg.WithFields(ctx, map[string]any{"cart_mode": repo.Mode().String(), "cart_op": op})
}

func addedMessage(name, size string, color *catalog.Color) string {
	var details []string
	if size != "" {
		details = append(details, "Size: "+size)
	}
	if color != nil && color.Name != "" {
		details = append(details, "Color: "+color.Name)
	}
	if len(details) == 0 {
		return fmt.Sprintf("Added %s to cart", name)
	}
	return fmt.Sprintf("Added %s (%s) to cart", name, strings.Join(details, ", "))
}
