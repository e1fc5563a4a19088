package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"go.uber.org/multierr"
)

// Deps are the process-wide dependencies shared by every session.
type Deps struct {
	Backend      storage.Backend
	API          *apiclient.Client
	Catalog      *catalog.Engine
	Calculator   checkout.Calculator
	Coupons      checkout.CouponLookup
	Logger       *logger.Logger
	Metrics      *metrics.Storefront
	FeedCapacity int
}

func (d Deps) validate() error {
	if d.Backend == nil {
		return fmt.Errorf("storage backend is required")
	}
	if d.API == nil {
		return fmt.Errorf("api client is required")
	}
	if d.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	return nil
}

// Session is one shopper's storefront: the services a browser tab would hold, bound to one
// namespace of the local store.
type Session struct {
	ID       string
	Store    storage.Store
	API      *apiclient.Client
	Catalog  *catalog.Engine
	Auth     *auth.Service
	Cart     *cart.Engine
	Wishlist *wishlist.Store
	Coupons  *checkout.CouponState
	Orders   *checkout.OrderService
	Feed     *notifications.Feed

	calc checkout.Calculator
	logg *logger.Logger

	mu       sync.Mutex
	lastUsed time.Time
}

// NewSession composes the services of one session.
func NewSession(deps Deps, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	lookup := deps.Coupons
	if lookup == nil {
		lookup = checkout.ChainCoupons{checkout.NewRemoteCoupons(deps.API), checkout.DefaultCoupons()}
	}
	calc := deps.Calculator
	if calc.IsZero() {
		calc = checkout.DefaultCalculator()
	}

	store := storage.Scope(deps.Backend, id)
	tokens := auth.NewTokenStore(store)
	api := deps.API.WithTokens(tokens)
	feed := notifications.NewFeed(deps.FeedCapacity)
	notifier := notifications.NewLoggingNotifier(feed, logg, deps.Metrics)

	engine, err := cart.NewEngine(cart.Params{
		Guest:         cart.NewLocalRepository(store, logg),
		Authenticated: cart.NewRemoteRepository(api),
		Notifier:      notifier,
		Logger:        logg,
		Metrics:       deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("cart engine: %w", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		API:      api,
		Tokens:   tokens,
		Store:    store,
		Cart:     engine,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	wish, err := wishlist.NewStore(store, notifier, logg)
	if err != nil {
		return nil, fmt.Errorf("wishlist: %w", err)
	}
	coupons, err := checkout.NewCouponState(lookup, calc, notifier, logg)
	if err != nil {
		return nil, fmt.Errorf("coupon state: %w", err)
	}
	orders, err := checkout.NewOrderService(checkout.OrderParams{
		Cart:     engine,
		API:      api,
		Store:    store,
		Calc:     calc,
		Coupons:  coupons,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}

	// A fresh login starts without the guest's coupon.
	authSvc.OnChange(func(context.Context, bool) { coupons.Remove() })

	return &Session{
		ID:       id,
		Store:    store,
		API:      api,
		Catalog:  deps.Catalog,
		Auth:     authSvc,
		Cart:     engine,
		Wishlist: wish,
		Coupons:  coupons,
		Orders:   orders,
		Feed:     feed,
		calc:     calc,
		logg:     logg,
		lastUsed: time.Now(),
	}, nil
}

// Mount hydrates the session from the local store: the wishlist, the guest cart and, when a
// usable token is stored, the server cart. Hydration failures are logged and leave the
// affected state empty.
func (s *Session) Mount(ctx context.Context) error {
	ctx = s.logg.WithSessionID(ctx, s.ID)
	err := multierr.Combine(
		s.Wishlist.Load(ctx),
		s.Cart.Load(ctx),
		s.Auth.Restore(ctx),
	)
	if err != nil {
		s.logg.Warn(ctx, "session mounted with errors: "+err.Error())
	}
	return err
}

// CartSummary prices the cart with the applied coupon.
func (s *Session) CartSummary() checkout.CartSummary {
	return s.Coupons.Summary(s.Cart.Subtotal())
}

// CheckoutSummary prices the cart for the checkout page.
func (s *Session) CheckoutSummary() checkout.CheckoutSummary {
	return s.calc.CheckoutSummary(s.Cart.Subtotal())
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

type sessionKey struct{}

// WithSession stores the session on the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession. Handlers reached without the session
// middleware are a wiring bug, so a missing session panics.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		panic("storefront: no session in context")
	}
	return s
}
