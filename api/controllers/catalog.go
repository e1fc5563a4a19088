package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

type productListResponse struct {
	Products      []catalog.Product      `json:"products"`
	Total         int                    `json:"total"`
	Filters       map[string][]string    `json:"filters"`
	ActiveFilters []catalog.ActiveFilter `json:"activeFilters"`
	NextCursor    string                 `json:"nextCursor,omitempty"`
}

// ProductList filters and sorts the catalog from the query string. ?remove=<kind> drops one
// active filter before applying, mirroring a filter chip's close button. The full result is
// returned unless limit or cursor asks for a page.
func ProductList(engine *catalog.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filters, err := catalog.ParseQuery(query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if kind := query.Get("remove"); kind != "" {
			filters = filters.Remove(catalog.FilterKind(kind))
		}
		clearAll, err := validators.ParseQueryFlag(r, "clear")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if clearAll {
			filters = filters.Clear()
		}
		products := engine.Apply(filters)
		resp := productListResponse{
			Products:      products,
			Total:         len(products),
			Filters:       filters.Query(),
			ActiveFilters: engine.ActiveFilters(filters),
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cursor := query.Get("cursor"); limit > 0 || cursor != "" {
			page, next, err := pagination.Page(products, pagination.Params{Limit: limit, Cursor: cursor})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
				return
			}
			resp.Products, resp.NextCursor = page, next
		}
		responses.WriteSuccess(w, resp)
	}
}

func ProductDetail(engine *catalog.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := engine.ProductBySlug(chi.URLParam(r, "slug"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CategoryList(engine *catalog.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.Categories())
	}
}

func CategoryDetail(engine *catalog.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := engine.CategoryBySlug(chi.URLParam(r, "slug"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "category not found"))
			return
		}
		responses.WriteSuccess(w, category)
	}
}
