package projections

import (
	"context"

	domainProduct "storefront/internal/domain/product"
)

// CompareRow is one attribute across the compared products.
type CompareRow struct {
	Attribute string
	Values    []string // one per product; "" when the product lacks the attribute
	Differs   bool
}

// GetCompareViewQuery carries the compare list in order.
type GetCompareViewQuery struct {
	IDs []string
}

// GetCompareViewResult carries the side-by-side matrix.
type GetCompareViewResult struct {
	Products []domainProduct.Product
	Rows     []CompareRow
	Missing  []string
}

// GetCompareViewDeps holds dependencies for GetCompareView.
type GetCompareViewDeps struct {
	ProductStore ProductStore
}

// QueryGetCompareView builds the attribute matrix for the compared products.
// PRE: none
// POST: the first rows are Price and Category, then the sorted union of attribute keys
func QueryGetCompareView(ctx context.Context, query GetCompareViewQuery, deps GetCompareViewDeps) (GetCompareViewResult, error) {
	products, missing, err := resolve(ctx, deps.ProductStore, query.IDs)
	if err != nil {
		return GetCompareViewResult{}, err
	}

	rows := []CompareRow{
		row("Price", products, func(p domainProduct.Product) string { return p.DisplayPrice() }),
		row("Category", products, func(p domainProduct.Product) string { return p.Category }),
	}
	for _, key := range domainProduct.AttributeKeys(products) {
		rows = append(rows, row(key, products, func(p domainProduct.Product) string { return p.Attributes[key] }))
	}
	return GetCompareViewResult{Products: products, Rows: rows, Missing: missing}, nil
}

func row(name string, products []domainProduct.Product, value func(domainProduct.Product) string) CompareRow {
	r := CompareRow{Attribute: name, Values: make([]string, len(products))}
	for i, p := range products {
		r.Values[i] = value(p)
		if i > 0 && r.Values[i] != r.Values[0] {
			r.Differs = true
		}
	}
	return r
}
