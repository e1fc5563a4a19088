package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Params wires the router.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions middleware.SessionProvider
	Catalog  *catalog.Engine
	Store    controllers.Pinger
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, p.Store))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(p.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(p.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(p.Catalog))
		r.Get("/categories/{slug}", controllers.CategoryDetail(p.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(p.Sessions, cfg.Sessions.Header, logg))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", controllers.AuthLogin(logg))
				r.Post("/register", controllers.AuthRegister(logg))
				r.Post("/logout", controllers.AuthLogout(logg))
				r.Get("/me", controllers.AuthMe(logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(logg))
				r.Delete("/", controllers.CartClear(logg))
				r.Post("/items", controllers.CartAddItem(logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateItem(logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(logg))
				r.Delete("/", controllers.WishlistClear(logg))
				r.Post("/items", controllers.WishlistAddItem(logg))
				r.Get("/items/{productID}", controllers.WishlistContains(logg))
				r.Delete("/items/{productID}", controllers.WishlistRemoveItem(logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/summary", controllers.CheckoutSummary(logg))
				r.Post("/coupon", controllers.CouponApply(logg))
				r.Delete("/coupon", controllers.CouponRemove(logg))
				r.Post("/orders", controllers.PlaceOrder(logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(logg))
				r.Get("/{orderID}", controllers.OrderDetail(logg))
			})

			r.Get("/notifications", controllers.NotificationsDrain(logg))
		})
	})

	return r
}
