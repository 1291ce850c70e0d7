package suggest

import (
	"context"

	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/tag"
)

// CatalogSource serves suggestions from the local catalog.
type CatalogSource struct {
	Store *catalog.Store
	Limit int
}

// Lookup implements Source.
func (c CatalogSource) Lookup(ctx context.Context, query string) ([]tag.Item, error) {
	return c.Store.Search(ctx, query, c.Limit)
}
