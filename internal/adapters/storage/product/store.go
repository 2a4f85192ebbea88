package product

import (
	"context"
	"errors"

	domain "storefront/internal/domain/product"
)

// ErrNotFound is returned when no product has the requested ID.
var ErrNotFound = errors.New("product not found")

// SortColumns are the ListFilter.Sort values the store accepts.
var SortColumns = []string{"name", "price", "newest"}

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	Search   string // matched against name and description
	Category string
	Sort     string // one of SortColumns; empty is name
	Dir      string // "asc" or "desc"
	Limit    int    // 0 means no limit
	Offset   int
}

// Store persists Product state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Save(ctx context.Context, value domain.Product) error
	Categories(ctx context.Context) ([]string, error)
}
