package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/domain/checkout"
	"storefront/internal/domain/product"
)

// CheckoutItem is one requested product and quantity.
type CheckoutItem struct {
	ProductID string
	Quantity  int
}

// CheckoutCommand is the checkout stub input.
type CheckoutCommand struct {
	Items     []CheckoutItem
	VisitorID string
}

// CheckoutDeps are the external dependencies for this orchestrator.
type CheckoutDeps struct {
	ProductStore productStore.Store
	GenerateRef  func() string
}

// ExecuteCheckout prices the requested items and returns a quote. No payment
// is taken and nothing is persisted.
// PRE: every item names a catalog product
// POST: returns a quote whose total is the sum of unit price times quantity
func ExecuteCheckout(ctx context.Context, cmd CheckoutCommand, deps CheckoutDeps) (checkout.Quote, error) {
	if len(cmd.Items) == 0 {
		return checkout.Quote{}, checkout.ErrNoLines
	}
	ids := make([]string, len(cmd.Items))
	for i, it := range cmd.Items {
		ids[i] = it.ProductID
	}
	products, err := deps.ProductStore.GetByIDs(ctx, ids)
	if err != nil {
		return checkout.Quote{}, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]checkout.Line, 0, len(cmd.Items))
	for _, it := range cmd.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return checkout.Quote{}, fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductID)
		}
		cur := p.Currency
		if cur == "" {
			cur = product.DefaultCurrency
		}
		lines = append(lines, checkout.Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitCents: p.PriceCents,
			Quantity:  it.Quantity,
			Currency:  cur,
		})
	}

	quote, err := checkout.NewQuote(deps.GenerateRef(), lines)
	if err != nil {
		return checkout.Quote{}, err
	}
	slog.Info("checkout_quoted", "reference", quote.Reference, "visitor", cmd.VisitorID,
		"lines", len(quote.Lines), "total_cents", quote.TotalCents)
	return quote, nil
}

// IsCheckoutInputError reports whether err is caused by bad checkout input
// rather than a storage failure.
func IsCheckoutInputError(err error) bool {
	return errors.Is(err, checkout.ErrNoLines) ||
		errors.Is(err, checkout.ErrInvalidQuantity) ||
		errors.Is(err, checkout.ErrMixedCurrency) ||
		errors.Is(err, ErrUnknownProduct)
}
