package inquiry

import (
	"context"

	domain "storefront/internal/domain/inquiry"
)

// Store persists shopper inquiries.
type Store interface {
	Save(ctx context.Context, value domain.Inquiry) error
	ListRecent(ctx context.Context, limit int) ([]domain.Inquiry, error)
}
