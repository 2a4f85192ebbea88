package projections

import (
	"context"
	"sort"
	"strings"

	productStore "storefront/internal/adapters/storage/product"
	domainProduct "storefront/internal/domain/product"
)

// mockProductStore implements ProductStore over a slice, honouring Category,
// Search, Limit and Offset.
type mockProductStore struct {
	products []domainProduct.Product
}

func (m *mockProductStore) GetByID(_ context.Context, id string) (domainProduct.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domainProduct.Product{}, productStore.ErrNotFound
}

func (m *mockProductStore) GetByIDs(ctx context.Context, ids []string) ([]domainProduct.Product, error) {
	out := []domainProduct.Product{}
	for _, id := range ids {
		if p, err := m.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) filtered(f productStore.ListFilter) []domainProduct.Product {
	var out []domainProduct.Product
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *mockProductStore) List(_ context.Context, f productStore.ListFilter) ([]domainProduct.Product, error) {
	out := m.filtered(f)
	if f.Offset > len(out) {
		return []domainProduct.Product{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *mockProductStore) Count(_ context.Context, f productStore.ListFilter) (int, error) {
	return len(m.filtered(f)), nil
}

func (m *mockProductStore) Categories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, p := range m.products {
		seen[p.Category] = true
	}
	var out []string
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func catalog() *mockProductStore {
	return &mockProductStore{products: []domainProduct.Product{
		{ID: "tote", Name: "Canvas Tote", PriceCents: 3500, Category: "bags", Attributes: map[string]string{"Material": "Canvas", "Weight": "400g"}},
		{ID: "pack", Name: "Backpack", PriceCents: 12900, Category: "bags", Attributes: map[string]string{"Material": "Waxed canvas"}},
		{ID: "sling", Name: "Sling", PriceCents: 3500, Category: "bags", Attributes: map[string]string{"Material": "Canvas", "Weight": "200g"}},
		{ID: "mug", Name: "Mug", PriceCents: 2200, Category: "kitchen"},
	}}
}
