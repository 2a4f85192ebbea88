package orchestrators

import (
	"context"
	"errors"
	"sort"

	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/domain/product"
)

// mockProductStore is an in-memory productStore.Store.
type mockProductStore struct {
	byID    map[string]product.Product
	saves   int
	saveErr error
	getErr  error
}

func newMockProductStore(ps ...product.Product) *mockProductStore {
	m := &mockProductStore{byID: map[string]product.Product{}}
	for _, p := range ps {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockProductStore) GetByID(_ context.Context, id string) (product.Product, error) {
	if m.getErr != nil {
		return product.Product{}, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return product.Product{}, productStore.ErrNotFound
	}
	return p, nil
}

func (m *mockProductStore) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	out := []product.Product{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) List(_ context.Context, _ productStore.ListFilter) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockProductStore) Count(_ context.Context, _ productStore.ListFilter) (int, error) {
	return len(m.byID), nil
}

func (m *mockProductStore) Save(_ context.Context, p product.Product) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := p.Validate(); err != nil {
		return err
	}
	m.saves++
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductStore) Categories(context.Context) ([]string, error) {
	return nil, errors.New("not used")
}
