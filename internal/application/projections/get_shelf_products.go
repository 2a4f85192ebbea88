package projections

import (
	"context"

	domainProduct "storefront/internal/domain/product"
)

// GetShelfProductsQuery carries the identifiers of one shelf list, in list order.
type GetShelfProductsQuery struct {
	IDs   []string
	Shelf ShelfState
}

// GetShelfProductsResult carries the resolved products.
type GetShelfProductsResult struct {
	Products []ProductCard
	// Missing lists identifiers no longer in the catalog.
	Missing []string
}

// GetShelfProductsDeps holds dependencies for GetShelfProducts.
type GetShelfProductsDeps struct {
	ProductStore ProductStore
}

// QueryGetShelfProducts resolves shelf identifiers to catalog products.
// PRE: none
// POST: Products follow the order of IDs; unknown identifiers are reported in Missing
// INVARIANT: shelf records are not modified
func QueryGetShelfProducts(ctx context.Context, query GetShelfProductsQuery, deps GetShelfProductsDeps) (GetShelfProductsResult, error) {
	products, missing, err := resolve(ctx, deps.ProductStore, query.IDs)
	if err != nil {
		return GetShelfProductsResult{}, err
	}
	return GetShelfProductsResult{Products: cards(products, query.Shelf), Missing: missing}, nil
}

func resolve(ctx context.Context, store ProductStore, ids []string) ([]domainProduct.Product, []string, error) {
	products, err := store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	found := make(map[string]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	missing := []string{}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return products, missing, nil
}
