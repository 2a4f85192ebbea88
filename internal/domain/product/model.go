package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultCurrency is used when a product has no currency set.
const DefaultCurrency = "NZD"

// MaxNameLength bounds product names shown in cards and compare headers.
const MaxNameLength = 200

// Product is a catalog item.
//
// Description is markdown; it is rendered to HTML at display time.
// Attributes are free-form properties ("Material", "Weight") used by the compare view.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int
	Currency    string
	Category    string
	ImageURL    string
	Attributes  map[string]string
	CreatedAt   time.Time
}

var (
	ErrMissingID     = errors.New("product id is required")
	ErrMissingName   = errors.New("product name is required")
	ErrNameTooLong   = errors.New("product name exceeds maximum length")
	ErrNegativePrice = errors.New("product price cannot be negative")
	ErrInvalidID     = errors.New("product id may only contain letters, digits, '-' and '_'")
)

// Validate checks the product invariants.
// PRE: none
// POST: returns nil if valid, error describing first violation otherwise
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if !ValidID(p.ID) {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.PriceCents < 0 {
		return ErrNegativePrice
	}
	return nil
}

// ValidID reports whether id is usable as a product identifier.
// IDs appear in URLs and shelf records, so they are restricted to a URL-safe alphabet.
func ValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// DisplayPrice formats the price as "NZD 12.50".
// INVARIANT: p is not mutated
func (p Product) DisplayPrice() string {
	cur := p.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return fmt.Sprintf("%s %d.%02d", cur, p.PriceCents/100, p.PriceCents%100)
}

// AttributeKeys returns the sorted union of attribute names across products.
// Used to build the compare matrix rows.
func AttributeKeys(products []Product) []string {
	seen := make(map[string]bool)
	for _, p := range products {
		for k := range p.Attributes {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrInvalidPrice is returned by ParsePrice for malformed amounts.
var ErrInvalidPrice = errors.New("price must be a decimal amount like 12.50")

// ParsePrice converts "12.5", "12.50" or "12" into cents.
// PRE: none
// POST: returns cents >= 0 or ErrInvalidPrice
func ParsePrice(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents := 0
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, ErrInvalidPrice
		}
		cents = cents*10 + int(r-'0')
		if cents > 1<<31 {
			return 0, ErrInvalidPrice
		}
	}
	return cents, nil
}
