package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/storefront"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type wishlistResponse struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

type addWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func newWishlistResponse(sess *storefront.Session) wishlistResponse {
	return wishlistResponse{Items: sess.Wishlist.Items(), Count: sess.Wishlist.Count()}
}

func WishlistFetch(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newWishlistResponse(storefront.FromContext(r.Context())))
	}
}

func WishlistAddItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		var req addWishlistRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, ok := sess.Catalog.ProductBySlug(req.ProductID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		if err := sess.Wishlist.AddItem(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newWishlistResponse(sess))
	}
}

func WishlistContains(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		productID := chi.URLParam(r, "productID")
		responses.WriteSuccess(w, map[string]any{
			"productId":    productID,
			"inWishlist":   sess.Wishlist.IsInWishlist(productID),
			"wishlistSize": sess.Wishlist.Count(),
		})
	}
}

func WishlistRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		if err := sess.Wishlist.RemoveItem(r.Context(), chi.URLParam(r, "productID")); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist"))
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(sess))
	}
}

func WishlistClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := storefront.FromContext(r.Context())
		if err := sess.Wishlist.ClearWishlist(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist"))
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(sess))
	}
}
