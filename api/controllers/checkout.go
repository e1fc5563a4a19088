package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type applyCouponRequest struct {
	Code string `json:"code"`
}

type checkoutResponse struct {
	Items   int                      `json:"itemCount"`
	Summary checkout.CheckoutSummary `json:"summary"`
}

func CheckoutSummary(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		responses.WriteSuccess(w, checkoutResponse{Items: sess.Cart.ItemCount(), Summary: sess.CheckoutSummary()})
	}
}

// CouponApply validates the code against the current subtotal; the empty-code message is
// left to the coupon state so the toast matches.
func CouponApply(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		var req applyCouponRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Coupons.Apply(r.Context(), req.Code, sess.Cart.Subtotal()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess))
	}
}

func CouponRemove(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		sess.Coupons.Remove()
		responses.WriteSuccess(w, newCartResponse(sess))
	}
}

func PlaceOrder(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		var form checkout.ShippingForm
		if err := validators.DecodeJSONBody(w, r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := sess.Orders.PlaceOrder(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := storefront.FromContext(r.Context()).Orders.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func OrderDetail(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := storefront.FromContext(r.Context()).Orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
