package product

import (
	"errors"
	"strings"
	"testing"
)

// TestProduct_Validate_Valid tests that a complete product passes validation.
func TestProduct_Validate_Valid(t *testing.T) {
	p := Product{ID: "sku-001", Name: "Linen Shirt", PriceCents: 8900}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestProduct_Validate_Errors tests each validation failure.
func TestProduct_Validate_Errors(t *testing.T) {
	cases := []struct {
		name string
		p    Product
		want error
	}{
		{"missing id", Product{Name: "x"}, ErrMissingID},
		{"bad id", Product{ID: "../etc", Name: "x"}, ErrInvalidID},
		{"missing name", Product{ID: "a", Name: "  "}, ErrMissingName},
		{"long name", Product{ID: "a", Name: strings.Repeat("n", MaxNameLength+1)}, ErrNameTooLong},
		{"negative price", Product{ID: "a", Name: "x", PriceCents: -1}, ErrNegativePrice},
	}
	for _, tc := range cases {
		if err := tc.p.Validate(); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

// TestProduct_DisplayPrice tests price formatting with and without currency.
func TestProduct_DisplayPrice(t *testing.T) {
	if got := (Product{PriceCents: 1250}).DisplayPrice(); got != "NZD 12.50" {
		t.Errorf("got %q, want NZD 12.50", got)
	}
	if got := (Product{PriceCents: 5, Currency: "USD"}).DisplayPrice(); got != "USD 0.05" {
		t.Errorf("got %q, want USD 0.05", got)
	}
}

// TestAttributeKeys tests the sorted union of attribute names.
func TestAttributeKeys(t *testing.T) {
	products := []Product{
		{Attributes: map[string]string{"Weight": "1kg", "Colour": "Red"}},
		{Attributes: map[string]string{"Material": "Oak", "Colour": "Blue"}},
		{},
	}
	got := AttributeKeys(products)
	want := []string{"Colour", "Material", "Weight"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestParsePrice verifies decimal amounts convert to cents.
func TestParsePrice(t *testing.T) {
	ok := map[string]int{"12.50": 1250, "12.5": 1250, "12": 1200, "$3.05": 305, " 0.99 ": 99, ".5": 50}
	for in, want := range ok {
		got, err := ParsePrice(in)
		if err != nil || got != want {
			t.Errorf("ParsePrice(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "1.234", "-5", "1.", "1,50"} {
		if _, err := ParsePrice(in); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("ParsePrice(%q) err = %v, want ErrInvalidPrice", in, err)
		}
	}
}
