package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/notifications"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// CouponState holds the at most one coupon applied to a session's cart. It is not persisted.
type CouponState struct {
	lookup   CouponLookup
	calc     Calculator
	notifier notifications.Notifier
	logg     *logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	applied *Coupon
}

func NewCouponState(lookup CouponLookup, calc Calculator, notifier notifications.Notifier, logg *logger.Logger) (*CouponState, error) {
	if lookup == nil {
		return nil, fmt.Errorf("coupon lookup required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &CouponState{lookup: lookup, calc: calc, notifier: notifier, logg: logg, now: time.Now}, nil
}

// Apply validates code against subtotal and applies it. Every rejection notifies the user
// and leaves the state unchanged.
func (s *CouponState) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Coupon{}, s.reject(ctx, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"), "Please enter a coupon code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied != nil {
		err := pkgerrors.New(pkgerrors.CodeStateConflict, "a coupon is already applied")
		return Coupon{}, s.reject(ctx, err, "Remove the current coupon before applying another")
	}

	coupon, err := s.lookup.Lookup(ctx, normalized)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return Coupon{}, s.reject(ctx, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon code"), "Invalid coupon code")
		}
		s.logg.Error(ctx, "coupon lookup failed", err)
		return Coupon{}, s.reject(ctx, err, "Could not validate coupon, please try again")
	}
	if !coupon.Usable(s.now()) {
		return Coupon{}, s.reject(ctx, pkgerrors.New(pkgerrors.CodeValidation, "coupon is inactive or expired"), "Invalid coupon code")
	}
	if coupon.MinPurchase != nil && subtotal.LessThan(*coupon.MinPurchase) {
		err := pkgerrors.New(pkgerrors.CodeValidation, "subtotal below coupon minimum").WithDetails(map[string]any{
			"minPurchase": coupon.MinPurchase.StringFixed(2),
			"subtotal":    subtotal.StringFixed(2),
		})
		return Coupon{}, s.reject(ctx, err, fmt.Sprintf("Minimum purchase of $%s required", coupon.MinPurchase.StringFixed(2)))
	}

	applied := coupon
	s.applied = &applied
	notifications.Success(ctx, s.notifier, fmt.Sprintf("Coupon %s applied", coupon.Code))
	return coupon, nil
}

func (s *CouponState) reject(ctx context.Context, err error, message string) error {
	notifications.Error(ctx, s.notifier, message)
	return err
}

// Remove drops the applied coupon, if any.
func (s *CouponState) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = nil
}

func (s *CouponState) Applied() (Coupon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.applied == nil {
		return Coupon{}, false
	}
	return *s.applied, true
}

// Summary is the cart page totals for subtotal with the applied coupon.
func (s *CouponState) Summary(subtotal decimal.Decimal) CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calc.CartSummary(subtotal, s.applied)
}
