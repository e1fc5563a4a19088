package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront/pkg/enums"
	"golang.org/x/text/cases"
)

// ActiveFilter is a removable chip describing one applied filter dimension.
type ActiveFilter struct {
	Kind  FilterKind `json:"kind"`
	Label string     `json:"label"`
}

// Engine filters and sorts a fixed product list. It never mutates its inputs.
type Engine struct {
	products   []Product
	categories []Category
	names      map[string]string
	bySlug     map[string]int
	byID       map[string]int
}

// NewEngine indexes the catalog data.
func NewEngine(data Data) *Engine {
	e := &Engine{
		products:   append([]Product(nil), data.Products...),
		categories: append([]Category(nil), data.Categories...),
		names:      map[string]string{},
		bySlug:     make(map[string]int, len(data.Products)),
		byID:       make(map[string]int, len(data.Products)),
	}
	for i, p := range e.products {
		e.bySlug[p.Slug] = i
		e.byID[p.ID] = i
	}
	var walk func([]Category)
	walk = func(nodes []Category) {
		for _, node := range nodes {
			e.names[node.ID] = node.Name
			walk(node.Subcategories)
		}
	}
	walk(e.categories)
	return e
}

// Products returns a copy of the full product list in catalog order.
func (e *Engine) Products() []Product {
	return append([]Product(nil), e.products...)
}

// Categories returns the top level categories.
func (e *Engine) Categories() []Category {
	return append([]Category(nil), e.categories...)
}

// ProductBySlug looks a product up by slug, falling back to its id.
func (e *Engine) ProductBySlug(slug string) (Product, bool) {
	if i, ok := e.bySlug[slug]; ok {
		return e.products[i], true
	}
	if i, ok := e.byID[slug]; ok {
		return e.products[i], true
	}
	return Product{}, false
}

// CategoryBySlug searches the tree at every level.
func (e *Engine) CategoryBySlug(slug string) (Category, bool) {
	var find func([]Category) (Category, bool)
	find = func(nodes []Category) (Category, bool) {
		for _, node := range nodes {
			if node.Slug == slug {
				return node, true
			}
			if found, ok := find(node.Subcategories); ok {
				return found, true
			}
		}
		return Category{}, false
	}
	return find(e.categories)
}

// Apply returns the products matching f in the order f asks for.
func (e *Engine) Apply(f Filters) []Product {
	return Apply(e.products, f)
}

// Apply filters and stably sorts products. Ties keep their input order.
func Apply(products []Product, f Filters) []Product {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(f.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(folder.String(p.Name), needle) &&
			!strings.Contains(folder.String(p.Description), needle) {
			continue
		}
		if !matchesCategory(p, f) {
			continue
		}
		price := p.EffectivePrice()
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.InStock && !p.InStock {
			continue
		}
		if f.OnSale && !p.OnSale() {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.sortMode())
	return out
}

// matchesCategory applies the override chain: the deepest selected level alone decides.
func matchesCategory(p Product, f Filters) bool {
	switch {
	case f.SubSubcategoryID != "":
		return p.SubSubcategoryID == f.SubSubcategoryID
	case f.SubcategoryID != "":
		return p.SubcategoryID == f.SubcategoryID
	case f.CategoryID != "":
		return p.CategoryID == f.CategoryID
	default:
		return true
	}
}

func sortProducts(products []Product, mode enums.SortMode) {
	switch mode {
	case enums.SortModeFeatured:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Featured && !products[j].Featured
		})
	case enums.SortModePriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice().LessThan(products[j].EffectivePrice())
		})
	case enums.SortModePriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice().GreaterThan(products[j].EffectivePrice())
		})
	case enums.SortModeNewest:
		sort.SliceStable(products, func(i, j int) bool {
			a, aok := numericID(products[i].ID)
			b, bok := numericID(products[j].ID)
			if aok != bok {
				return aok
			}
			return aok && a > b
		})
	case enums.SortModeRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	}
}

func numericID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	return n, err == nil
}

// ActiveFilters describes the applied dimensions of f in a fixed order.
func (e *Engine) ActiveFilters(f Filters) []ActiveFilter {
	var active []ActiveFilter
	if search := strings.TrimSpace(f.Search); search != "" {
		active = append(active, ActiveFilter{Kind: FilterSearch, Label: `Search: "` + search + `"`})
	}
	if f.hasCategory() {
		active = append(active, ActiveFilter{Kind: FilterCategory, Label: e.categoryLabel(f)})
	}
	if f.HasPriceRange() {
		active = append(active, ActiveFilter{Kind: FilterPrice, Label: priceLabel(f)})
	}
	if f.InStock {
		active = append(active, ActiveFilter{Kind: FilterInStock, Label: "In Stock"})
	}
	if f.OnSale {
		active = append(active, ActiveFilter{Kind: FilterOnSale, Label: "On Sale"})
	}
	return active
}

func (e *Engine) categoryLabel(f Filters) string {
	var parts []string
	for _, id := range []string{f.CategoryID, f.SubcategoryID, f.SubSubcategoryID} {
		if id == "" {
			continue
		}
		name, ok := e.names[id]
		if !ok {
			name = id
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " > ")
}

func priceLabel(f Filters) string {
	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		return "$" + f.MinPrice.StringFixed(2) + " - $" + f.MaxPrice.StringFixed(2)
	case f.MinPrice != nil:
		return "From $" + f.MinPrice.StringFixed(2)
	default:
		return "Up to $" + f.MaxPrice.StringFixed(2)
	}
}
