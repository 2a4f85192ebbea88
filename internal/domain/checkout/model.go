package checkout

import (
	"errors"
	"fmt"
)

// MaxQuantity caps a single checkout line.
const MaxQuantity = 99

// Line is one product in a checkout request.
type Line struct {
	ProductID string
	Name      string
	UnitCents int
	Quantity  int
	Currency  string
}

// Quote is the result of the checkout stub. No payment is taken.
type Quote struct {
	Reference  string
	Lines      []Line
	TotalCents int
	Currency   string
}

var (
	ErrNoLines         = errors.New("checkout needs at least one product")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrMixedCurrency   = errors.New("all products in a checkout must share a currency")
)

// NewQuote totals the given lines.
// PRE: every line has a resolved product (Name, UnitCents, Currency)
// POST: returns a quote with TotalCents = sum(UnitCents * Quantity)
func NewQuote(reference string, lines []Line) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrNoLines
	}
	q := Quote{Reference: reference, Currency: lines[0].Currency}
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxQuantity {
			return Quote{}, ErrInvalidQuantity
		}
		if l.Currency != q.Currency {
			return Quote{}, ErrMixedCurrency
		}
		q.TotalCents += l.UnitCents * l.Quantity
		q.Lines = append(q.Lines, l)
	}
	return q, nil
}

// DisplayTotal formats the total as "NZD 12.50".
func (q Quote) DisplayTotal() string {
	return fmt.Sprintf("%s %d.%02d", q.Currency, q.TotalCents/100, q.TotalCents%100)
}
