package checkout

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validForm = ShippingForm{
	FullName:   "Ada Lovelace",
	Email:      "ada@example.com",
	Line1:      "12 Analytical Row",
	City:       "London",
	State:      "Greater London",
	PostalCode: "N1 7GU",
	Country:    "GB",
}

type stubCart struct {
	items   []cart.Item
	mode    enums.CartMode
	cleared int
}

func (s *stubCart) Items() []cart.Item { return append([]cart.Item(nil), s.items...) }

func (s *stubCart) Mode() enums.CartMode { return s.mode }

func (s *stubCart) ClearCart(context.Context) error {
	s.cleared++
	s.items = nil
	return nil
}

type stubOrderAPI struct {
	created []apiclient.CreateOrderRequest
	orders  map[string]apiclient.Order
}

func (s *stubOrderAPI) CreateOrder(_ context.Context, req apiclient.CreateOrderRequest) (apiclient.Order, error) {
	s.created = append(s.created, req)
	order := apiclient.Order{ID: "srv-order-1", Items: req.Items, Status: "pending"}
	if s.orders == nil {
		s.orders = map[string]apiclient.Order{}
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderAPI) GetOrder(_ context.Context, id string) (apiclient.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return apiclient.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *stubOrderAPI) ListOrders(context.Context) ([]apiclient.Order, error) {
	out := make([]apiclient.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order)
	}
	return out, nil
}

type orderHarness struct {
	svc     *OrderService
	cart    *stubCart
	api     *stubOrderAPI
	store   storage.Store
	coupons *CouponState
	feed    *notifications.Feed
}

func newOrderHarness(t *testing.T, mode enums.CartMode) orderHarness {
	t.Helper()
	feed := notifications.NewFeed(20)
	store := storage.Scope(storage.NewMemoryBackend(), "sess")
	coupons, err := NewCouponState(DefaultCoupons(), DefaultCalculator(), feed, nil)
	require.NoError(t, err)
	shirt := catalog.Product{ID: "1", Name: "Oxford", Price: d("30"), Images: []string{"/img/oxford.jpg"}}
	tote := catalog.Product{ID: "2", Name: "Tote", Price: d("20"), SalePrice: decPtr("12.5")}
	stub := &stubCart{
		mode: mode,
		items: []cart.Item{
			{ID: "a", ProductID: "1", Quantity: 1, SelectedSize: "M", Product: shirt},
			{ID: "b", ProductID: "2", Quantity: 2, Product: tote},
		},
	}
	api := &stubOrderAPI{}
	svc, err := NewOrderService(OrderParams{
		Cart:     stub,
		API:      api,
		Store:    store,
		Calc:     DefaultCalculator(),
		Coupons:  coupons,
		Notifier: feed,
	})
	require.NoError(t, err)
	return orderHarness{svc: svc, cart: stub, api: api, store: store, coupons: coupons, feed: feed}
}

func decPtr(v string) *decimal.Decimal {
	value := d(v)
	return &value
}

func TestPlaceGuestOrderWritesOrdersRecord(t *testing.T) {
	h := newOrderHarness(t, enums.CartModeGuest)
	ctx := context.Background()
	_, err := h.coupons.Apply(ctx, "FASHION10", d("55"))
	require.NoError(t, err)

	order, err := h.svc.PlaceOrder(ctx, validForm)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assertDecimal(t, "55", order.Subtotal)
	assertDecimal(t, "15", order.Shipping)
	assertDecimal(t, "5.5", order.Tax)
	assertDecimal(t, "75.5", order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "/img/oxford.jpg", order.Items[0].Image)
	assertDecimal(t, "12.5", order.Items[1].UnitPrice)

	assert.Equal(t, 1, h.cart.cleared)
	_, applied := h.coupons.Applied()
	assert.False(t, applied, "placing an order drops the coupon")

	var stored []apiclient.Order
	require.NoError(t, storage.NewRecords(h.store).LoadJSON(ctx, storage.KeyOrders, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, order.ID, stored[0].ID)

	confirmation, err := h.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", confirmation.ShippingAddress.FullName)

	_, err = h.svc.GetOrder(ctx, "missing")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestGuestOrdersAccumulate(t *testing.T) {
	h := newOrderHarness(t, enums.CartModeGuest)
	ctx := context.Background()
	items := h.cart.items

	_, err := h.svc.PlaceOrder(ctx, validForm)
	require.NoError(t, err)
	h.cart.items = items
	_, err = h.svc.PlaceOrder(ctx, validForm)
	require.NoError(t, err)

	orders, err := h.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestPlaceAuthenticatedOrderUsesAPI(t *testing.T) {
	h := newOrderHarness(t, enums.CartModeAuthenticated)
	ctx := context.Background()

	order, err := h.svc.PlaceOrder(ctx, validForm)
	require.NoError(t, err)
	assert.Equal(t, "srv-order-1", order.ID)
	require.Len(t, h.api.created, 1)
	assert.Equal(t, "GB", h.api.created[0].ShippingAddress.Country)

	_, err = h.store.Get(ctx, storage.KeyOrders)
	require.ErrorIs(t, err, storage.ErrNotFound)

	fetched, err := h.svc.GetOrder(ctx, "srv-order-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", fetched.Status)
}

func TestPlaceOrderRejectsInvalidFormAndEmptyCart(t *testing.T) {
	h := newOrderHarness(t, enums.CartModeGuest)
	ctx := context.Background()

	bad := validForm
	bad.Email = "not-an-email"
	bad.City = ""
	_, err := h.svc.PlaceOrder(ctx, bad)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"email": "must be a valid email", "city": "is required"}, typed.Details())
	assert.Zero(t, h.cart.cleared)

	blank := validForm
	blank.FullName = "   "
	blank.City = "\t "
	_, err = h.svc.PlaceOrder(ctx, blank)
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"fullName": "is required", "city": "is required"}, typed.Details())
	orders, err := h.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	h.cart.items = nil
	_, err = h.svc.PlaceOrder(ctx, validForm)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Len(t, h.feed.Drain(), 3)
}

func TestCorruptOrdersRecordReadsEmpty(t *testing.T) {
	h := newOrderHarness(t, enums.CartModeGuest)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, storage.KeyOrders, []byte("[{")))

	orders, err := h.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = h.svc.PlaceOrder(ctx, validForm)
	require.NoError(t, err)
	orders, err = h.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
