package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderStatusConfirmed = "confirmed"

// ShippingForm is the checkout form.
type ShippingForm struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=16"`
	Country    string `json:"country" validate:"required,max=56"`
}

// normalized trims every field so blank input fails the required checks.
func (f ShippingForm) normalized() ShippingForm {
	return ShippingForm{
		FullName:   strings.TrimSpace(f.FullName),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Line1:      strings.TrimSpace(f.Line1),
		Line2:      strings.TrimSpace(f.Line2),
		City:       strings.TrimSpace(f.City),
		State:      strings.TrimSpace(f.State),
		PostalCode: strings.TrimSpace(f.PostalCode),
		Country:    strings.TrimSpace(f.Country),
	}
}

func (f ShippingForm) address() apiclient.Address {
	return apiclient.Address{
		FullName:   f.FullName,
		Email:      f.Email,
		Phone:      f.Phone,
		Line1:      f.Line1,
		Line2:      f.Line2,
		City:       f.City,
		State:      f.State,
		PostalCode: f.PostalCode,
		Country:    f.Country,
	}
}

// CartSource is the part of the cart engine checkout reads and clears.
type CartSource interface {
	Items() []cart.Item
	Mode() enums.CartMode
	ClearCart(ctx context.Context) error
}

type orderAPI interface {
	CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest) (apiclient.Order, error)
	GetOrder(ctx context.Context, id string) (apiclient.Order, error)
	ListOrders(ctx context.Context) ([]apiclient.Order, error)
}

// OrderParams wires an order service.
type OrderParams struct {
	Cart     CartSource
	API      orderAPI
	Store    storage.Store
	Calc     Calculator
	Coupons  *CouponState
	Notifier notifications.Notifier
	Logger   *logger.Logger
}

// OrderService places orders and reads confirmations. Authenticated carts order through the
// API; guest orders are kept in the local orders record.
type OrderService struct {
	cart     CartSource
	api      orderAPI
	records  *storage.Records
	calc     Calculator
	coupons  *CouponState
	notifier notifications.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewOrderService(p OrderParams) (*OrderService, error) {
	if p.Cart == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if p.API == nil {
		return nil, fmt.Errorf("order api required")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &OrderService{
		cart:     p.Cart,
		api:      p.API,
		records:  storage.NewRecords(p.Store),
		calc:     p.Calc,
		coupons:  p.Coupons,
		notifier: p.Notifier,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// PlaceOrder validates the form, records the order with checkout totals, then clears the
// cart and the applied coupon.
func (s *OrderService) PlaceOrder(ctx context.Context, form ShippingForm) (apiclient.Order, error) {
	form = form.normalized()
	if err := validation.Struct(form); err != nil {
		notifications.Error(ctx, s.notifier, "Please complete the shipping form")
		return apiclient.Order{}, err
	}
	items := s.cart.Items()
	if len(items) == 0 {
		notifications.Error(ctx, s.notifier, "Your cart is empty")
		return apiclient.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	lines := orderItems(items)
	var (
		order apiclient.Order
		err   error
	)
	if s.cart.Mode() == enums.CartModeAuthenticated {
		order, err = s.api.CreateOrder(ctx, apiclient.CreateOrderRequest{Items: lines, ShippingAddress: form.address()})
	} else {
		order, err = s.placeLocal(ctx, lines, form.address())
	}
	if err != nil {
		s.logg.Error(ctx, "failed to place order", err)
		notifications.Error(ctx, s.notifier, "Failed to place order")
		return apiclient.Order{}, err
	}

	if err := s.cart.ClearCart(ctx); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "order placed but cart was not cleared", err)
	}
	if s.coupons != nil {
		s.coupons.Remove()
	}
	notifications.Success(ctx, s.notifier, "Order placed successfully")
	return order, nil
}

func (s *OrderService) placeLocal(ctx context.Context, lines []apiclient.OrderItem, address apiclient.Address) (apiclient.Order, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	summary := s.calc.CheckoutSummary(subtotal)

	id, err := uuid.NewV7()
	if err != nil {
		return apiclient.Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}
	order := apiclient.Order{
		ID:              id.String(),
		Items:           lines,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Tax:             summary.Tax,
		Discount:        decimal.Zero,
		Total:           summary.Total,
		Status:          orderStatusConfirmed,
		ShippingAddress: address,
		CreatedAt:       s.now().UTC(),
	}

	orders, err := s.localOrders(ctx)
	if err != nil {
		return apiclient.Order{}, err
	}
	orders = append(orders, order)
	if err := s.records.SaveJSON(ctx, storage.KeyOrders, orders); err != nil {
		return apiclient.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

// GetOrder returns one order confirmation.
func (s *OrderService) GetOrder(ctx context.Context, id string) (apiclient.Order, error) {
	if s.cart.Mode() == enums.CartModeAuthenticated {
		return s.api.GetOrder(ctx, id)
	}
	orders, err := s.localOrders(ctx)
	if err != nil {
		return apiclient.Order{}, err
	}
	for _, order := range orders {
		if order.ID == id {
			return order, nil
		}
	}
	return apiclient.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// ListOrders returns the session's orders, oldest first for guests.
func (s *OrderService) ListOrders(ctx context.Context) ([]apiclient.Order, error) {
	if s.cart.Mode() == enums.CartModeAuthenticated {
		return s.api.ListOrders(ctx)
	}
	return s.localOrders(ctx)
}

// localOrders reads the orders record; a corrupt record reads as no orders.
func (s *OrderService) localOrders(ctx context.Context) ([]apiclient.Order, error) {
	var orders []apiclient.Order
	err := s.records.LoadJSON(ctx, storage.KeyOrders, &orders)
	switch {
	case err == nil:
		return orders, nil
	case errors.Is(err, storage.ErrNotFound):
		return []apiclient.Order{}, nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logg.Error(ctx, "stored orders are corrupt, ignoring", err)
		return []apiclient.Order{}, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
}

func orderItems(items []cart.Item) []apiclient.OrderItem {
	lines := make([]apiclient.OrderItem, 0, len(items))
	for _, item := range items {
		var image string
		if len(item.Product.Images) > 0 {
			image = item.Product.Images[0]
		}
		lines = append(lines, apiclient.OrderItem{
			ProductID:     item.ProductID,
			Name:          item.Product.Name,
			Image:         image,
			Quantity:      item.Quantity,
			UnitPrice:     item.Product.EffectivePrice(),
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	return lines
}
