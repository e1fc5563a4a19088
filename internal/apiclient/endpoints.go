package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func escape(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, kind+" is required")
	}
	return nil
}

func getList[T any](ctx context.Context, c *Client, route, path, key string) ([]T, error) {
	out := list[T]{key: key}
	if err := c.do(ctx, http.MethodGet, route, path, nil, &out); err != nil {
		return nil, err
	}
	return out.items, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", creds, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "/auth/register", req, &resp)
	return resp, err
}

// Me returns the user owning the bearer token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/auth/me", "/auth/me", nil, &user)
	return user, err
}

func (c *Client) GetCart(ctx context.Context) ([]CartItem, error) {
	return getList[CartItem](ctx, c, "/cart", "/cart", "items")
}

func (c *Client) AddToCart(ctx context.Context, req AddToCartRequest) error {
	if err := requireID("product id", req.ProductID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/cart", "/cart", req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	if err := requireID("cart item id", itemID); err != nil {
		return err
	}
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/cart/:id", "/cart/"+escape(itemID), body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	if err := requireID("cart item id", itemID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/cart/:id", "/cart/"+escape(itemID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", "/cart", nil, nil)
}

func (c *Client) GetWishlist(ctx context.Context) ([]catalog.Product, error) {
	return getList[catalog.Product](ctx, c, "/wishlist", "/wishlist", "items")
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	if err := requireID("product id", productID); err != nil {
		return err
	}
	body := map[string]string{"productId": productID}
	return c.do(ctx, http.MethodPost, "/wishlist", "/wishlist", body, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	if err := requireID("product id", productID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/wishlist/:id", "/wishlist/"+escape(productID), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return getList[catalog.Product](ctx, c, "/products", "/products", "products")
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var product catalog.Product
	if err := requireID("product id", id); err != nil {
		return product, err
	}
	err := c.do(ctx, http.MethodGet, "/products/:id", "/products/"+escape(id), nil, &product)
	return product, err
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	var product catalog.Product
	if err := requireID("product slug", slug); err != nil {
		return product, err
	}
	err := c.do(ctx, http.MethodGet, "/products/slug/:slug", "/products/slug/"+escape(slug), nil, &product)
	return product, err
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	return getList[catalog.Product](ctx, c, "/products/featured", "/products/featured", "products")
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return getList[catalog.Category](ctx, c, "/categories", "/categories", "categories")
}

func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	var category catalog.Category
	if err := requireID("category slug", slug); err != nil {
		return category, err
	}
	err := c.do(ctx, http.MethodGet, "/categories/slug/:slug", "/categories/slug/"+escape(slug), nil, &category)
	return category, err
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	return getList[Order](ctx, c, "/orders", "/orders", "orders")
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var order Order
	err := c.do(ctx, http.MethodPost, "/orders", "/orders", req, &order)
	return order, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var order Order
	if err := requireID("order id", id); err != nil {
		return order, err
	}
	err := c.do(ctx, http.MethodGet, "/orders/:id", "/orders/"+escape(id), nil, &order)
	return order, err
}

func (c *Client) GetCoupon(ctx context.Context, code string) (Coupon, error) {
	var coupon Coupon
	if err := requireID("coupon code", code); err != nil {
		return coupon, err
	}
	err := c.do(ctx, http.MethodGet, "/coupons/:code", "/coupons/"+escape(code), nil, &coupon)
	return coupon, err
}

func (c *Client) ListBanners(ctx context.Context) ([]Banner, error) {
	return getList[Banner](ctx, c, "/banners", "/banners", "banners")
}

func (c *Client) ListSpecialOffers(ctx context.Context) ([]SpecialOffer, error) {
	return getList[SpecialOffer](ctx, c, "/special-offers", "/special-offers", "offers")
}
