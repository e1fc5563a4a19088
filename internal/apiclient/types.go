package apiclient

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CartItem is a server-side cart line with its product snapshot.
type CartItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor *catalog.Color  `json:"selectedColor,omitempty"`
	Product       catalog.Product `json:"product"`
}

type AddToCartRequest struct {
	ProductID     string         `json:"productId"`
	Quantity      int            `json:"quantity"`
	SelectedSize  string         `json:"selectedSize,omitempty"`
	SelectedColor *catalog.Color `json:"selectedColor,omitempty"`
}

// Coupon as served by GET /coupons/:code.
type Coupon struct {
	Code        string           `json:"code"`
	Discount    decimal.Decimal  `json:"discount"`
	Type        string           `json:"type"`
	MinPurchase *decimal.Decimal `json:"minPurchase,omitempty"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	IsActive    bool             `json:"isActive"`
}

type Address struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor *catalog.Color  `json:"selectedColor,omitempty"`
}

// Order is a placed order. The same shape is kept in the local orders record for guests.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"couponCode,omitempty"`
	Status          string          `json:"status"`
	ShippingAddress Address         `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shippingAddress"`
	CouponCode      string      `json:"couponCode,omitempty"`
}

type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image"`
	Link     string `json:"link,omitempty"`
	IsActive bool   `json:"isActive"`
}

type SpecialOffer struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	Image       string          `json:"image,omitempty"`
	EndsAt      *time.Time      `json:"endsAt,omitempty"`
}

// list decodes either a bare JSON array or an object holding the array under key.
type list[T any] struct {
	key   string
	items []T
}

func (l *list[T]) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.items)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	inner, ok := wrapped[l.key]
	if !ok {
		inner, ok = wrapped["data"]
	}
	if !ok || string(bytes.TrimSpace(inner)) == "null" {
		l.items = nil
		return nil
	}
	return json.Unmarshal(inner, &l.items)
}
