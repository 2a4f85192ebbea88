package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	productStore "storefront/internal/adapters/storage/product"
	domain "storefront/internal/domain/product"
)

// CatalogSeedFile is the YAML layout of a catalog seed.
//
//	products:
//	  - id: tote
//	    name: Canvas Tote
//	    price: "35.00"
//	    category: bags
//	    attributes:
//	      Material: Canvas
type CatalogSeedFile struct {
	Products []CatalogSeedProduct `yaml:"products"`
}

// CatalogSeedProduct is one product entry in a seed file.
type CatalogSeedProduct struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Price       string            `yaml:"price"`
	Currency    string            `yaml:"currency"`
	Category    string            `yaml:"category"`
	Image       string            `yaml:"image"`
	Attributes  map[string]string `yaml:"attributes"`
}

// SeedCatalogInput carries the seed stream.
type SeedCatalogInput struct {
	Reader      io.Reader
	OnlyIfEmpty bool // skip entirely when the catalog already has products
}

// SeedCatalogResult reports what a seed run did.
type SeedCatalogResult struct {
	Seeded  int
	Skipped bool
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	ProductStore productStore.Store
}

// ExecuteSeedCatalog upserts every product in a YAML seed.
// PRE: Input.Reader holds a CatalogSeedFile document
// POST: all products are saved, or an error names the first invalid entry and nothing is written
func ExecuteSeedCatalog(ctx context.Context, input SeedCatalogInput, deps SeedCatalogDeps) (SeedCatalogResult, error) {
	if input.OnlyIfEmpty {
		n, err := deps.ProductStore.Count(ctx, productStore.ListFilter{})
		if err != nil {
			return SeedCatalogResult{}, err
		}
		if n > 0 {
			return SeedCatalogResult{Skipped: true}, nil
		}
	}

	var file CatalogSeedFile
	dec := yaml.NewDecoder(input.Reader)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return SeedCatalogResult{}, fmt.Errorf("decode catalog seed: %w", err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for i, sp := range file.Products {
		price, err := domain.ParsePrice(sp.Price)
		if err != nil {
			return SeedCatalogResult{}, fmt.Errorf("seed product %d (%s): %w", i+1, sp.ID, err)
		}
		p := domain.Product{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: strings.TrimSpace(sp.Description),
			PriceCents:  price,
			Currency:    strings.ToUpper(sp.Currency),
			Category:    strings.ToLower(sp.Category),
			ImageURL:    sp.Image,
			Attributes:  sp.Attributes,
		}
		if err := p.Validate(); err != nil {
			return SeedCatalogResult{}, fmt.Errorf("seed product %d (%s): %w", i+1, sp.ID, err)
		}
		products = append(products, p)
	}

	for _, p := range products {
		if err := deps.ProductStore.Save(ctx, p); err != nil {
			return SeedCatalogResult{}, fmt.Errorf("save seed product %s: %w", p.ID, err)
		}
	}
	slog.Info("catalog_seeded", "products", len(products))
	return SeedCatalogResult{Seeded: len(products)}, nil
}
