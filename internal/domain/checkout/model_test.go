package checkout

import "testing"

// TestNewQuote_Totals tests that line totals are summed.
func TestNewQuote_Totals(t *testing.T) {
	q, err := NewQuote("ref-1", []Line{
		{ProductID: "a", UnitCents: 1000, Quantity: 2, Currency: "NZD"},
		{ProductID: "b", UnitCents: 250, Quantity: 1, Currency: "NZD"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TotalCents != 2250 {
		t.Errorf("TotalCents = %d, want 2250", q.TotalCents)
	}
	if q.DisplayTotal() != "NZD 22.50" {
		t.Errorf("DisplayTotal = %q", q.DisplayTotal())
	}
}

// TestNewQuote_Rejects tests empty, out-of-range and mixed-currency input.
func TestNewQuote_Rejects(t *testing.T) {
	if _, err := NewQuote("r", nil); err != ErrNoLines {
		t.Errorf("empty: got %v, want ErrNoLines", err)
	}
	if _, err := NewQuote("r", []Line{{Quantity: 0, Currency: "NZD"}}); err != ErrInvalidQuantity {
		t.Errorf("zero qty: got %v, want ErrInvalidQuantity", err)
	}
	if _, err := NewQuote("r", []Line{{Quantity: MaxQuantity + 1, Currency: "NZD"}}); err != ErrInvalidQuantity {
		t.Errorf("big qty: got %v, want ErrInvalidQuantity", err)
	}
	_, err := NewQuote("r", []Line{{Quantity: 1, Currency: "NZD"}, {Quantity: 1, Currency: "USD"}})
	if err != ErrMixedCurrency {
		t.Errorf("mixed: got %v, want ErrMixedCurrency", err)
	}
}
