package cart

import (
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Item is one cart line with the product snapshot taken when it was added.
type Item struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor *catalog.Color  `json:"selectedColor,omitempty"`
	Product       catalog.Product `json:"product"`
}

// LineTotal is the effective unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) sameVariant(productID, size string, color *catalog.Color) bool {
	return i.ProductID == productID && i.SelectedSize == size && catalog.ColorsEqual(i.SelectedColor, color)
}

// Line is a request to add quantity units of a product variant.
type Line struct {
	Product  catalog.Product
	Quantity int
	Size     string
	Color    *catalog.Color
}

// ItemCount sums the quantities of items.
func ItemCount(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums the line totals of items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return append([]Item(nil), items...)
}
