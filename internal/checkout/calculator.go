package checkout

import (
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator derives shipping, discount and tax from a cart subtotal.
type Calculator struct {
	threshold decimal.Decimal
	fee       decimal.Decimal
	taxRate   decimal.Decimal
}

func NewCalculator(cfg config.CheckoutConfig) Calculator {
	return Calculator{
		threshold: cfg.FreeShippingThreshold,
		fee:       cfg.ShippingFee,
		taxRate:   cfg.TaxRate,
	}
}

// DefaultCalculator uses free shipping from 75.00, a 15.00 fee and 10% tax.
func DefaultCalculator() Calculator {
	return Calculator{
		threshold: decimal.NewFromInt(75),
		fee:       decimal.NewFromInt(15),
		taxRate:   decimal.RequireFromString("0.10"),
	}
}

// IsZero reports whether the calculator was never configured.
func (c Calculator) IsZero() bool {
	return c.threshold.IsZero() && c.fee.IsZero() && c.taxRate.IsZero()
}

// CartSummary is the cart page view: no tax, coupon applied.
type CartSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CheckoutSummary is the checkout page view: tax added, no coupon.
type CheckoutSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Shipping is free at or above the threshold, else the flat fee.
func (c Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.threshold) {
		return decimal.Zero
	}
	return c.fee
}

// Discount is subtotal*value/100 for percentage coupons and the flat value for fixed ones.
func (c Calculator) Discount(coupon *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	switch coupon.Type {
	case enums.CouponTypePercentage:
		return subtotal.Mul(coupon.Discount).Div(hundred).Round(2)
	case enums.CouponTypeFixed:
		return coupon.Discount.Round(2)
	default:
		return decimal.Zero
	}
}

func (c Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.taxRate).Round(2)
}

// CartSummary computes subtotal - discount + shipping, never below zero.
func (c Calculator) CartSummary(subtotal decimal.Decimal, coupon *Coupon) CartSummary {
	subtotal = subtotal.Round(2)
	discount := c.Discount(coupon, subtotal)
	shipping := c.Shipping(subtotal)
	total := subtotal.Sub(discount).Add(shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return CartSummary{Subtotal: subtotal, Discount: discount, Shipping: shipping, Total: total.Round(2)}
}

// CheckoutSummary computes subtotal + shipping + tax.
func (c Calculator) CheckoutSummary(subtotal decimal.Decimal) CheckoutSummary {
	subtotal = subtotal.Round(2)
	shipping := c.Shipping(subtotal)
	tax := c.Tax(subtotal)
	return CheckoutSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}
