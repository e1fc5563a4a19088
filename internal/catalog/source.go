package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/logger"
)

//go:embed seed.json
var seedJSON []byte

// Data is a product list together with its category tree.
type Data struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

// Source loads catalog data from the remote API.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Seed returns the catalog bundled with the binary.
func Seed() (Data, error) {
	var data Data
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return Data{}, fmt.Errorf("decode seed catalog: %w", err)
	}
	return data, nil
}

// Load fetches the catalog from source and falls back to the seed when the source is nil,
// fails, or returns no products.
func Load(ctx context.Context, source Source, logg *logger.Logger) (Data, error) {
	seed, err := Seed()
	if err != nil {
		return Data{}, err
	}
	if source == nil {
		return seed, nil
	}

	products, err := source.ListProducts(ctx)
	if err != nil {
		logg.Error(ctx, "remote catalog unavailable, using seed catalog", err)
		return seed, nil
	}
	if len(products) == 0 {
		logg.Warn(ctx, "remote catalog is empty, using seed catalog")
		return seed, nil
	}

	categories, err := source.ListCategories(ctx)
	if err != nil {
		logg.Error(ctx, "remote categories unavailable, using seed categories", err)
		categories = seed.Categories
	}

	logg.Info(logg.WithField(ctx, "product_count", len(products)), "remote catalog loaded")
	return Data{Products: products, Categories: categories}, nil
}
