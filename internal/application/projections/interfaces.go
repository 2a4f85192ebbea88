package projections

import (
	"context"

	productStore "storefront/internal/adapters/storage/product"
	domainProduct "storefront/internal/domain/product"
)

// ProductStore interface for catalog queries.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (domainProduct.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domainProduct.Product, error)
	List(ctx context.Context, filter productStore.ListFilter) ([]domainProduct.Product, error)
	Count(ctx context.Context, filter productStore.ListFilter) (int, error)
	Categories(ctx context.Context) ([]string, error)
}

// ShelfState is the visitor's favorites and compare membership at query time.
type ShelfState struct {
	Favorites  []string
	Compare    []string
	CompareMax int
}

func (s ShelfState) isFavorite(id string) bool { return contains(s.Favorites, id) }
func (s ShelfState) isCompared(id string) bool { return contains(s.Compare, id) }

// CompareFull reports whether no more products can be added to the comparison.
func (s ShelfState) CompareFull() bool {
	return s.CompareMax > 0 && len(s.Compare) >= s.CompareMax
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ProductCard is a product with the visitor's shelf flags.
type ProductCard struct {
	domainProduct.Product
	Favorite bool
	Compared bool
}

func cards(products []domainProduct.Product, shelf ShelfState) []ProductCard {
	out := make([]ProductCard, len(products))
	for i, p := range products {
		out[i] = ProductCard{Product: p, Favorite: shelf.isFavorite(p.ID), Compared: shelf.isCompared(p.ID)}
	}
	return out
}
