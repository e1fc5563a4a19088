package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	querySearch         = "q"
	queryCategory       = "category"
	querySubcategory    = "subcategory"
	querySubSubcategory = "subsubcategory"
	queryMinPrice       = "minPrice"
	queryMaxPrice       = "maxPrice"
	queryInStock        = "inStock"
	queryOnSale         = "onSale"
	querySort           = "sort"
)

// ParseQuery reads listing filters from URL query values. Missing values keep their defaults.
func ParseQuery(values url.Values) (Filters, error) {
	f := DefaultFilters()
	f.Search = strings.TrimSpace(values.Get(querySearch))
	f.CategoryID = strings.TrimSpace(values.Get(queryCategory))
	f.SubcategoryID = strings.TrimSpace(values.Get(querySubcategory))
	f.SubSubcategoryID = strings.TrimSpace(values.Get(querySubSubcategory))

	var err error
	if f.MinPrice, err = parsePrice(values, queryMinPrice); err != nil {
		return Filters{}, err
	}
	if f.MaxPrice, err = parsePrice(values, queryMaxPrice); err != nil {
		return Filters{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	if f.InStock, err = parseFlag(values, queryInStock); err != nil {
		return Filters{}, err
	}
	if f.OnSale, err = parseFlag(values, queryOnSale); err != nil {
		return Filters{}, err
	}
	if raw := strings.TrimSpace(values.Get(querySort)); raw != "" {
		mode, err := enums.ParseSortMode(raw)
		if err != nil {
			return Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
		}
		f.Sort = mode
	}
	return f, nil
}

// Query encodes f so that ParseQuery returns an equivalent value.
func (f Filters) Query() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set(querySearch, f.Search)
	set(queryCategory, f.CategoryID)
	set(querySubcategory, f.SubcategoryID)
	set(querySubSubcategory, f.SubSubcategoryID)
	if f.MinPrice != nil {
		values.Set(queryMinPrice, f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		values.Set(queryMaxPrice, f.MaxPrice.String())
	}
	if f.InStock {
		values.Set(queryInStock, "true")
	}
	if f.OnSale {
		values.Set(queryOnSale, "true")
	}
	if f.Sort != "" && f.Sort != enums.SortModeFeatured {
		values.Set(querySort, f.Sort.String())
	}
	return values
}

func parsePrice(values url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a non-negative number")
	}
	return &price, nil
}

func parseFlag(values url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return false, nil
	}
	flag, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a boolean")
	}
	return flag, nil
}
