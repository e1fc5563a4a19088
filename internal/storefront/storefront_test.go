package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tee = catalog.Product{ID: "7", Name: "Linen Tee", Price: decimal.NewFromInt(40), InStock: true}

// fakeBackend serves the handful of routes a session touches and records bearer headers.
type fakeBackend struct {
	mu      sync.Mutex
	bearers []string
	cart    []apiclient.CartItem
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.AuthResponse{Token: "opaque", User: apiclient.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}})
	})
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.bearers = append(f.bearers, r.Header.Get("Authorization"))
		items := f.cart
		f.mu.Unlock()
		writeJSON(t, w, map[string]any{"items": items})
	})
	mux.HandleFunc("/coupons/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"message": "Coupon not found"})
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func newDeps(t *testing.T, backend storage.Backend) (Deps, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{cart: []apiclient.CartItem{{ID: "srv-1", ProductID: "7", Quantity: 2, Product: tee}}}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	data, err := catalog.Seed()
	require.NoError(t, err)
	return Deps{
		Backend:    backend,
		API:        client,
		Catalog:    catalog.NewEngine(data),
		Calculator: checkout.DefaultCalculator(),
	}, fake
}

func TestNewSessionValidates(t *testing.T) {
	deps, _ := newDeps(t, storage.NewMemoryBackend())

	_, err := NewSession(deps, " ")
	require.Error(t, err)

	deps.Backend = nil
	_, err = NewSession(deps, "s1")
	require.Error(t, err)
}

func TestGuestCartSurvivesSessionRebuild(t *testing.T) {
	backend := storage.NewMemoryBackend()
	deps, _ := newDeps(t, backend)
	ctx := context.Background()

	first, err := NewSession(deps, "s1")
	require.NoError(t, err)
	require.NoError(t, first.Mount(ctx))
	require.NoError(t, first.Cart.AddItem(ctx, tee, 2, "M", nil))
	require.NoError(t, first.Wishlist.AddItem(ctx, tee))

	second, err := NewSession(deps, "s1")
	require.NoError(t, err)
	require.NoError(t, second.Mount(ctx))
	assert.Equal(t, 2, second.Cart.ItemCount())
	assert.True(t, second.Wishlist.IsInWishlist("7"))

	other, err := NewSession(deps, "s2")
	require.NoError(t, err)
	require.NoError(t, other.Mount(ctx))
	assert.Zero(t, other.Cart.ItemCount(), "sessions do not share records")
}

func TestLoginSwitchesToServerCartWithBearer(t *testing.T) {
	deps, fake := newDeps(t, storage.NewMemoryBackend())
	ctx := context.Background()
	s, err := NewSession(deps, "s1")
	require.NoError(t, err)
	require.NoError(t, s.Mount(ctx))

	_, err = s.Auth.Login(ctx, auth.LoginRequest{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, enums.CartModeAuthenticated, s.Cart.Mode())
	require.Len(t, s.Cart.Items(), 1)
	assert.Equal(t, "srv-1", s.Cart.Items()[0].ID)
	fake.mu.Lock()
	assert.Equal(t, []string{"Bearer opaque"}, fake.bearers)
	fake.mu.Unlock()

	rebuilt, err := NewSession(deps, "s1")
	require.NoError(t, err)
	require.NoError(t, rebuilt.Mount(ctx))
	assert.Equal(t, enums.CartModeAuthenticated, rebuilt.Cart.Mode(), "stored token restores the server cart")
}

func TestSessionSummariesAndCouponFallback(t *testing.T) {
	deps, _ := newDeps(t, storage.NewMemoryBackend())
	deps.Coupons = nil
	ctx := context.Background()
	s, err := NewSession(deps, "s1")
	require.NoError(t, err)
	require.NoError(t, s.Cart.AddItem(ctx, tee, 2, "", nil))

	_, err = s.Coupons.Apply(ctx, "welcome15", s.Cart.Subtotal())
	require.NoError(t, err, "remote 404 falls through to the seed book")

	cartSummary := s.CartSummary()
	assert.True(t, cartSummary.Discount.Equal(decimal.NewFromInt(12)), cartSummary.Discount.String())
	assert.True(t, cartSummary.Total.Equal(decimal.NewFromInt(68)), cartSummary.Total.String())

	checkoutSummary := s.CheckoutSummary()
	assert.True(t, checkoutSummary.Total.Equal(decimal.NewFromInt(88)), checkoutSummary.Total.String())
}

func TestRegistryEvictsLongestIdle(t *testing.T) {
	deps, _ := newDeps(t, storage.NewMemoryBackend())
	reg, err := NewRegistry(deps, 2)
	require.NoError(t, err)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	ctx := context.Background()

	a, err := reg.Get(ctx, "a")
	require.NoError(t, err)
	_, err = reg.Get(ctx, "b")
	require.NoError(t, err)
	again, err := reg.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = reg.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	reg.mu.Lock()
	_, hasA := reg.sessions["a"]
	_, hasB := reg.sessions["b"]
	reg.mu.Unlock()
	assert.True(t, hasA)
	assert.False(t, hasB, "b was idle the longest")

	reg.Forget("a")
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Get(ctx, "")
	require.Error(t, err)
}

func TestFromContext(t *testing.T) {
	deps, _ := newDeps(t, storage.NewMemoryBackend())
	s, err := NewSession(deps, "s1")
	require.NoError(t, err)

	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
	assert.Panics(t, func() { FromContext(context.Background()) })
	assert.NotEmpty(t, NewSessionID())
}
