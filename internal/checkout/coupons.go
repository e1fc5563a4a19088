package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Coupon is a discount code. MinPurchase nil means no minimum.
type Coupon struct {
	Code        string           `json:"code"`
	Discount    decimal.Decimal  `json:"discount"`
	Type        enums.CouponType `json:"type"`
	MinPurchase *decimal.Decimal `json:"minPurchase,omitempty"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	IsActive    bool             `json:"isActive"`
}

// Usable reports whether the coupon is active and unexpired at now.
func (c Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

// NormalizeCode uppercases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponLookup finds a coupon by code. Unknown codes return a CodeNotFound error.
type CouponLookup interface {
	Lookup(ctx context.Context, code string) (Coupon, error)
}

func errUnknownCoupon(code string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "coupon "+code+" not found")
}

// StaticCoupons is a fixed coupon book keyed by normalized code.
type StaticCoupons map[string]Coupon

func NewStaticCoupons(coupons ...Coupon) StaticCoupons {
	book := make(StaticCoupons, len(coupons))
	for _, coupon := range coupons {
		coupon.Code = NormalizeCode(coupon.Code)
		book[coupon.Code] = coupon
	}
	return book
}

// DefaultCoupons is the storefront's built-in coupon book.
func DefaultCoupons() StaticCoupons {
	expires := time.Date(2030, time.December, 31, 23, 59, 59, 0, time.UTC)
	atLeast := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return NewStaticCoupons(
		Coupon{Code: "FASHION10", Discount: decimal.NewFromInt(10), Type: enums.CouponTypePercentage, MinPurchase: atLeast(50), ExpiresAt: expires, IsActive: true},
		Coupon{Code: "SAVE20", Discount: decimal.NewFromInt(20), Type: enums.CouponTypeFixed, MinPurchase: atLeast(100), ExpiresAt: expires, IsActive: true},
		Coupon{Code: "WELCOME15", Discount: decimal.NewFromInt(15), Type: enums.CouponTypePercentage, ExpiresAt: expires, IsActive: true},
	)
}

func (s StaticCoupons) Lookup(_ context.Context, code string) (Coupon, error) {
	normalized := NormalizeCode(code)
	coupon, ok := s[normalized]
	if !ok {
		return Coupon{}, errUnknownCoupon(normalized)
	}
	return coupon, nil
}

type couponAPI interface {
	GetCoupon(ctx context.Context, code string) (apiclient.Coupon, error)
}

// RemoteCoupons asks the backend.
type RemoteCoupons struct {
	api couponAPI
}

func NewRemoteCoupons(api couponAPI) *RemoteCoupons {
	return &RemoteCoupons{api: api}
}

func (r *RemoteCoupons) Lookup(ctx context.Context, code string) (Coupon, error) {
	normalized := NormalizeCode(code)
	remote, err := r.api.GetCoupon(ctx, normalized)
	if err != nil {
		return Coupon{}, err
	}
	couponType, err := enums.ParseCouponType(strings.ToLower(remote.Type))
	if err != nil {
		return Coupon{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected coupon type")
	}
	return Coupon{
		Code:        NormalizeCode(remote.Code),
		Discount:    remote.Discount,
		Type:        couponType,
		MinPurchase: remote.MinPurchase,
		ExpiresAt:   remote.ExpiresAt,
		IsActive:    remote.IsActive,
	}, nil
}

// ChainCoupons tries each lookup in order and moves on when a lookup does not know the code
// or its backend is unavailable.
type ChainCoupons []CouponLookup

func (c ChainCoupons) Lookup(ctx context.Context, code string) (Coupon, error) {
	err := errUnknownCoupon(NormalizeCode(code))
	for _, lookup := range c {
		if lookup == nil {
			continue
		}
		var coupon Coupon
		coupon, err = lookup.Lookup(ctx, code)
		if err == nil {
			return coupon, nil
		}
		switch pkgerrors.CodeOf(err) {
		case pkgerrors.CodeNotFound, pkgerrors.CodeDependency:
			continue
		default:
			return Coupon{}, err
		}
	}
	return Coupon{}, err
}
