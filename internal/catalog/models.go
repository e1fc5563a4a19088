package catalog

import "github.com/shopspring/decimal"

// Color is one selectable product color.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ColorsEqual compares two optional colors structurally; two nil colors are equal.
func ColorsEqual(a, b *Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name && a.Hex == b.Hex
}

// Product is an immutable catalog entry.
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	Images           []string         `json:"images"`
	CategoryID       string           `json:"categoryId"`
	SubcategoryID    string           `json:"subcategoryId,omitempty"`
	SubSubcategoryID string           `json:"subSubcategoryId,omitempty"`
	Featured         bool             `json:"featured"`
	InStock          bool             `json:"inStock"`
	Rating           float64          `json:"rating"`
	ReviewCount      int              `json:"reviewCount"`
	Slug             string           `json:"slug"`
	Sizes            []string         `json:"sizes,omitempty"`
	Colors           []Color          `json:"colors,omitempty"`
}

// EffectivePrice is the sale price when present, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the product carries a sale price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil
}

// Category is one node of the three level category tree.
type Category struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Subcategories []Category `json:"subcategories,omitempty"`
}
