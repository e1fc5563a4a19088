package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type cartResponse struct {
	Mode      enums.CartMode       `json:"mode"`
	Items     []cart.Item          `json:"items"`
	ItemCount int                  `json:"itemCount"`
	Summary   checkout.CartSummary `json:"summary"`
	Coupon    *checkout.Coupon     `json:"coupon,omitempty"`
}

func newCartResponse(sess *storefront.Session) cartResponse {
	resp := cartResponse{
		Mode:      sess.Cart.Mode(),
		Items:     sess.Cart.Items(),
		ItemCount: sess.Cart.ItemCount(),
		Summary:   sess.CartSummary(),
	}
	if coupon, ok := sess.Coupons.Applied(); ok {
		resp.Coupon = &coupon
	}
	return resp
}

type addCartItemRequest struct {
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"gt=0"`
	Size      string         `json:"size" validate:"omitempty,max=32"`
	Color     *catalog.Color `json:"color"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func CartFetch(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(storefront.FromContext(r.Context())))
	}
}

func CartAddItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, ok := sess.Catalog.ProductBySlug(strings.TrimSpace(req.ProductID))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		if err := sess.Cart.AddItem(r.Context(), product, req.Quantity, req.Size, req.Color); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(sess))
	}
}

// CartUpdateItem sets a line's quantity; zero or less removes the line.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := sess.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "itemID"), req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess))
	}
}

func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		if err := sess.Cart.RemoveItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess))
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		if err := sess.Cart.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess))
	}
}
