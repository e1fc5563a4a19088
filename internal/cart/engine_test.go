package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	navy = &catalog.Color{Name: "Navy", Hex: "#1F2A44"}

	productA = catalog.Product{ID: "1", Name: "Oxford Shirt", Price: decimal.RequireFromString("30")}
	productB = catalog.Product{ID: "2", Name: "Chino", Price: decimal.RequireFromString("50"), SalePrice: decPtr("40")}
)

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

type harness struct {
	engine *Engine
	store  storage.Store
	remote *fakeRemote
	feed   *notifications.Feed
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := storage.Scope(storage.NewMemoryBackend(), "sess")
	remote := newFakeRemote()
	feed := notifications.NewFeed(100)
	engine, err := NewEngine(Params{
		Guest:         NewLocalRepository(store, logger.Nop()),
		Authenticated: NewRemoteRepository(remote),
		Notifier:      feed,
		Logger:        logger.Nop(),
	})
	require.NoError(t, err)
	return &harness{engine: engine, store: store, remote: remote, feed: feed}
}

func (h *harness) storedCart(t *testing.T) ([]Item, error) {
	t.Helper()
	var items []Item
	err := storage.NewRecords(h.store).LoadJSON(context.Background(), storage.KeyCart, &items)
	return items, err
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	_, err := NewEngine(Params{})
	require.Error(t, err)
	_, err = NewEngine(Params{Guest: &LocalRepository{}, Authenticated: &RemoteRepository{}})
	require.Error(t, err)
}

func TestGuestAddMergesSameVariant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "M", nil))
	require.NoError(t, h.engine.AddItem(ctx, productA, 2, "M", nil))

	items := h.engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.NotEmpty(t, items[0].ID)

	stored, err := h.storedCart(t)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 3, stored[0].Quantity)
}

func TestGuestAddComparesColorsStructurally(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "M", &catalog.Color{Name: "Navy", Hex: "#1F2A44"}))
	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "M", &catalog.Color{Name: "Navy", Hex: "#1F2A44"}))
	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "L", navy))
	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "M", nil))

	items := h.engine.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 4, h.engine.ItemCount())
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	h := newHarness(t)
	err := h.engine.AddItem(context.Background(), productA, 0, "", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, h.engine.Items())

	toasts := h.feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, enums.NotificationLevelError, toasts[0].Level)
}

func TestAddItemAnnouncesVariant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "M", navy))
	require.NoError(t, h.engine.AddItem(ctx, productB, 1, "", nil))
	require.NoError(t, h.engine.AddItem(ctx, productB, 1, "32", nil))

	toasts := h.feed.Drain()
	require.Len(t, toasts, 3)
	assert.Equal(t, "Added Oxford Shirt (Size: M, Color: Navy) to cart", toasts[0].Message)
	assert.Equal(t, "Added Chino to cart", toasts[1].Message)
	assert.Equal(t, "Added Chino (Size: 32) to cart", toasts[2].Message)
	assert.Equal(t, enums.NotificationLevelSuccess, toasts[0].Level)
}

func TestUpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1, -7} {
		t.Run(fmt.Sprint(q), func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			require.NoError(t, h.engine.AddItem(ctx, productA, 1, "", nil))
			require.NoError(t, h.engine.AddItem(ctx, productB, 2, "", nil))
			target := h.engine.Items()[0].ID

			require.NoError(t, h.engine.UpdateQuantity(ctx, target, q))

			items := h.engine.Items()
			require.Len(t, items, 1)
			assert.Equal(t, productB.ID, items[0].ProductID)
			for _, item := range items {
				assert.Positive(t, item.Quantity)
			}
		})
	}
}

func TestDerivedTotalsTrackItems(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.AddItem(ctx, productA, 2, "", nil))
	require.NoError(t, h.engine.AddItem(ctx, productB, 3, "", nil))
	assert.Equal(t, 5, h.engine.ItemCount())
	assert.True(t, h.engine.Subtotal().Equal(decimal.RequireFromString("180")), h.engine.Subtotal().String())

	lineB := h.engine.Items()[1].ID
	require.NoError(t, h.engine.UpdateQuantity(ctx, lineB, 1))
	assert.Equal(t, 3, h.engine.ItemCount())
	assert.True(t, h.engine.Subtotal().Equal(decimal.RequireFromString("100")))

	require.NoError(t, h.engine.UpdateQuantity(ctx, "missing", 9))
	assert.Equal(t, 3, h.engine.ItemCount(), "unknown ids are ignored")
}

func TestGuestPersistenceSkipsEmptyWritesAndClearDeletes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "", nil))
	line := h.engine.Items()[0].ID
	require.NoError(t, h.engine.RemoveItem(ctx, line))
	assert.Empty(t, h.engine.Items())

	stored, err := h.storedCart(t)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "an emptied list is not written back")

	require.NoError(t, h.engine.ClearCart(ctx))
	_, err = h.storedCart(t)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGuestLoadToleratesCorruptRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, storage.KeyCart, []byte("{oops")))

	require.NoError(t, h.engine.Load(ctx))
	assert.Empty(t, h.engine.Items())

	raw, err := h.store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "{oops", string(raw), "corrupt cart is kept")
	assert.Empty(t, h.feed.Drain(), "corrupt data is not surfaced to the user")
}

func TestGuestLoadRestoresPersistedCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.engine.AddItem(ctx, productB, 2, "32", nil))

	engine, err := NewEngine(Params{
		Guest:         NewLocalRepository(h.store, nil),
		Authenticated: NewRemoteRepository(newFakeRemote()),
		Notifier:      notifications.NewFeed(10),
	})
	require.NoError(t, err)
	require.NoError(t, engine.Load(ctx))

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, h.engine.Items()[0].ID, items[0].ID)
	assert.Equal(t, "32", items[0].SelectedSize)
	assert.True(t, engine.Subtotal().Equal(decimal.RequireFromString("80")))
}

func TestAuthenticatedMutationsRefetch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.remote.seed(apiclient.CartItem{ID: "srv-1", ProductID: "1", Quantity: 1, Product: productA})

	require.NoError(t, h.engine.SetAuthenticated(ctx, true))
	assert.Equal(t, enums.CartModeAuthenticated, h.engine.Mode())
	require.Len(t, h.engine.Items(), 1)

	require.NoError(t, h.engine.AddItem(ctx, productB, 2, "", nil))
	items := h.engine.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "srv-2", items[1].ID)

	require.NoError(t, h.engine.UpdateQuantity(ctx, "srv-2", 5))
	assert.Equal(t, 6, h.engine.ItemCount())

	require.NoError(t, h.engine.UpdateQuantity(ctx, "srv-1", 0))
	assert.Equal(t, []string{"add", "refetch", "update", "refetch", "remove", "refetch"}, h.remote.callsAfterLoad())

	require.NoError(t, h.engine.ClearCart(ctx))
	assert.Empty(t, h.engine.Items())
	assert.Empty(t, h.remote.items)

	_, err := h.storedCart(t)
	require.ErrorIs(t, err, storage.ErrNotFound, "authenticated carts never touch the local record")
}

func TestAuthenticatedFailureLeavesItemsUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.remote.seed(apiclient.CartItem{ID: "srv-1", ProductID: "1", Quantity: 1, Product: productA})
	require.NoError(t, h.engine.SetAuthenticated(ctx, true))
	h.feed.Drain()

	h.remote.failWith(pkgerrors.New(pkgerrors.CodeDependency, "backend down"))
	err := h.engine.AddItem(ctx, productB, 1, "", nil)
	require.Error(t, err)
	require.Len(t, h.engine.Items(), 1)

	err = h.engine.RemoveItem(ctx, "srv-1")
	require.Error(t, err)
	require.Len(t, h.engine.Items(), 1)

	toasts := h.feed.Drain()
	require.Len(t, toasts, 2)
	assert.Equal(t, "Failed to add item to cart", toasts[0].Message)
	assert.Equal(t, enums.NotificationLevelError, toasts[1].Level)
}

func TestSwitchingModesRehydrates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "", nil))
	h.remote.seed(
		apiclient.CartItem{ID: "srv-1", ProductID: "2", Quantity: 4, Product: productB},
	)

	require.NoError(t, h.engine.SetAuthenticated(ctx, true))
	assert.Equal(t, 4, h.engine.ItemCount())

	require.NoError(t, h.engine.SetAuthenticated(ctx, true))
	assert.Equal(t, 1, h.remote.loads, "no reload without a mode change")

	require.NoError(t, h.engine.SetAuthenticated(ctx, false))
	assert.Equal(t, enums.CartModeGuest, h.engine.Mode())
	assert.Equal(t, 1, h.engine.ItemCount())
}

func TestRemoteLoadFailureEmptiesCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.engine.AddItem(ctx, productA, 1, "", nil))
	h.remote.failWith(pkgerrors.New(pkgerrors.CodeUnauthorized, "expired"))

	err := h.engine.SetAuthenticated(ctx, true)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, h.engine.Items())
}

func TestAuthenticatedMutationsAreSerialized(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.engine.SetAuthenticated(ctx, true))
	h.remote.delay = 2 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.engine.AddItem(ctx, productA, 1, "", nil))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, h.remote.maxInFlight.Load())
	assert.Len(t, h.engine.Items(), 8)
	assert.Equal(t, 8, h.engine.ItemCount())
}

// fakeRemote is an in-memory server cart that assigns ids and never merges lines.
type fakeRemote struct {
	mu          sync.Mutex
	items       []apiclient.CartItem
	nextID      int
	calls       []string
	loads       int
	err         error
	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{}
}

func (f *fakeRemote) seed(items ...apiclient.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
	f.nextID = len(f.items)
}

func (f *fakeRemote) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRemote) callsAfterLoad() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return append([]string(nil), f.calls[1:]...)
}

func (f *fakeRemote) enter(call string) func() {
	n := f.inFlight.Add(1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeRemote) GetCart(context.Context) ([]apiclient.CartItem, error) {
	defer f.enter("refetch")()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return append([]apiclient.CartItem(nil), f.items...), nil
}

func (f *fakeRemote) AddToCart(_ context.Context, req apiclient.AddToCartRequest) error {
	defer f.enter("add")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	f.items = append(f.items, apiclient.CartItem{
		ID:        fmt.Sprintf("srv-%d", f.nextID),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Product:   catalog.Product{ID: req.ProductID, Price: decimal.NewFromInt(10)},
	})
	return nil
}

func (f *fakeRemote) UpdateCartItem(_ context.Context, itemID string, quantity int) error {
	defer f.enter("update")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = quantity
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRemote) RemoveCartItem(_ context.Context, itemID string) error {
	defer f.enter("remove")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeRemote) ClearCart(context.Context) error {
	defer f.enter("clear")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items = nil
	return nil
}
