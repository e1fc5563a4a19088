package catalog

import (
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// FilterKind names one removable filter dimension.
type FilterKind string

const (
	FilterSearch   FilterKind = "search"
	FilterCategory FilterKind = "category"
	FilterPrice    FilterKind = "price"
	FilterInStock  FilterKind = "in-stock"
	FilterOnSale   FilterKind = "on-sale"
)

// Filters is the full filter and sort state of a listing. Transitions return a new value.
// A nil price bound leaves that end of the range open.
type Filters struct {
	Search           string
	CategoryID       string
	SubcategoryID    string
	SubSubcategoryID string
	MinPrice         *decimal.Decimal
	MaxPrice         *decimal.Decimal
	InStock          bool
	OnSale           bool
	Sort             enums.SortMode
}

// DefaultFilters is the unfiltered listing in featured order.
func DefaultFilters() Filters {
	return Filters{Sort: enums.SortModeFeatured}
}

// SelectCategory sets the top level category and clears both descendants.
func (f Filters) SelectCategory(id string) Filters {
	f.CategoryID = id
	f.SubcategoryID = ""
	f.SubSubcategoryID = ""
	return f
}

// SelectSubcategory sets the subcategory and clears any sub-subcategory.
func (f Filters) SelectSubcategory(id string) Filters {
	f.SubcategoryID = id
	f.SubSubcategoryID = ""
	return f
}

func (f Filters) SelectSubSubcategory(id string) Filters {
	f.SubSubcategoryID = id
	return f
}

// WithPriceRange sets both price bounds; nil opens that end.
func (f Filters) WithPriceRange(min, max *decimal.Decimal) Filters {
	f.MinPrice = copyDecimal(min)
	f.MaxPrice = copyDecimal(max)
	return f
}

// Clear resets every filter dimension and keeps the sort mode.
func (f Filters) Clear() Filters {
	return Filters{Sort: f.Sort}
}

// Remove clears exactly the dimension an active filter descriptor of the given kind stands
// for. The category descriptor always describes the deepest selected level, so only that
// level is cleared.
func (f Filters) Remove(kind FilterKind) Filters {
	switch kind {
	case FilterSearch:
		f.Search = ""
	case FilterCategory:
		switch {
		case f.SubSubcategoryID != "":
			f.SubSubcategoryID = ""
		case f.SubcategoryID != "":
			f.SubcategoryID = ""
			f.SubSubcategoryID = ""
		default:
			f.CategoryID = ""
			f.SubcategoryID = ""
			f.SubSubcategoryID = ""
		}
	case FilterPrice:
		f.MinPrice = nil
		f.MaxPrice = nil
	case FilterInStock:
		f.InStock = false
	case FilterOnSale:
		f.OnSale = false
	}
	return f
}

// HasPriceRange reports whether either price bound is set.
func (f Filters) HasPriceRange() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

func (f Filters) hasCategory() bool {
	return f.CategoryID != "" || f.SubcategoryID != "" || f.SubSubcategoryID != ""
}

func (f Filters) sortMode() enums.SortMode {
	if f.Sort.IsValid() {
		return f.Sort
	}
	return enums.SortModeFeatured
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
