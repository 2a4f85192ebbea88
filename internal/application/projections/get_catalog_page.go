package projections

import (
	"context"

	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/listutil"
)

// CatalogFilterKeys are the exact-match filters the catalog page accepts.
var CatalogFilterKeys = []string{"category"}

// GetCatalogPageQuery carries query parameters.
type GetCatalogPageQuery struct {
	Params listutil.ListParams
	Shelf  ShelfState
}

// GetCatalogPageResult carries the query result.
type GetCatalogPageResult struct {
	Products   []ProductCard
	Page       listutil.PageInfo
	Categories []string
	Params     listutil.ListParams
}

// GetCatalogPageDeps holds dependencies for GetCatalogPage.
type GetCatalogPageDeps struct {
	ProductStore ProductStore
}

// QueryGetCatalogPage returns one page of the catalog with shelf flags.
// PRE: Params were parsed with productStore.SortColumns and CatalogFilterKeys
// POST: Page is clamped to the last page; Products holds at most PerPage cards
func QueryGetCatalogPage(ctx context.Context, query GetCatalogPageQuery, deps GetCatalogPageDeps) (GetCatalogPageResult, error) {
	filter := productStore.ListFilter{
		Search:   query.Params.Search,
		Category: query.Params.Filters["category"],
		Sort:     query.Params.Sort,
		Dir:      query.Params.Dir,
	}
	total, err := deps.ProductStore.Count(ctx, filter)
	if err != nil {
		return GetCatalogPageResult{}, err
	}
	page := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	products, err := deps.ProductStore.List(ctx, filter)
	if err != nil {
		return GetCatalogPageResult{}, err
	}
	categories, err := deps.ProductStore.Categories(ctx)
	if err != nil {
		return GetCatalogPageResult{}, err
	}

	params := query.Params
	params.Page = page.Page
	params.PerPage = page.PerPage
	return GetCatalogPageResult{
		Products:   cards(products, query.Shelf),
		Page:       page,
		Categories: categories,
		Params:     params,
	}, nil
}
