package projections

import (
	"context"

	productStore "storefront/internal/adapters/storage/product"
	domainProduct "storefront/internal/domain/product"
)

// relatedLimit is how many same-category products the item page suggests.
const relatedLimit = 4

// GetProductDetailQuery carries query parameters.
type GetProductDetailQuery struct {
	ProductID string
	Shelf     ShelfState
}

// GetProductDetailResult carries the query result.
type GetProductDetailResult struct {
	Product     domainProduct.Product
	Favorite    bool
	Compared    bool
	CompareFull bool
	Related     []ProductCard
}

// GetProductDetailDeps holds dependencies for GetProductDetail.
type GetProductDetailDeps struct {
	ProductStore ProductStore
}

// QueryGetProductDetail loads one product with shelf state and related items.
// PRE: ProductID is non-empty
// POST: returns productStore.ErrNotFound for unknown products; Related never contains the product itself
func QueryGetProductDetail(ctx context.Context, query GetProductDetailQuery, deps GetProductDetailDeps) (GetProductDetailResult, error) {
	p, err := deps.ProductStore.GetByID(ctx, query.ProductID)
	if err != nil {
		return GetProductDetailResult{}, err
	}
	result := GetProductDetailResult{
		Product:     p,
		Favorite:    query.Shelf.isFavorite(p.ID),
		Compared:    query.Shelf.isCompared(p.ID),
		CompareFull: query.Shelf.CompareFull(),
	}
	if p.Category == "" {
		return result, nil
	}
	siblings, err := deps.ProductStore.List(ctx, productStore.ListFilter{Category: p.Category, Limit: relatedLimit + 1})
	if err != nil {
		return GetProductDetailResult{}, err
	}
	related := make([]domainProduct.Product, 0, relatedLimit)
	for _, s := range siblings {
		if s.ID != p.ID && len(related) < relatedLimit {
			related = append(related, s)
		}
	}
	result.Related = cards(related, query.Shelf)
	return result, nil
}
