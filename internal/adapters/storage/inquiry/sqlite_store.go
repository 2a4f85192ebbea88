package inquiry

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/inquiry"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Inquiry store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts an inquiry.
// PRE: value has an ID and passes Validate
// POST: The inquiry is persisted
func (s *SQLiteStore) Save(ctx context.Context, value domain.Inquiry) error {
	if value.CreatedAt.IsZero() {
		value.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiry (id, product_id, name, email, message, visitor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, value.ID, value.ProductID, value.Name, value.Email, value.Message, value.VisitorID,
		value.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save inquiry: %w", err)
	}
	return nil
}

// ListRecent returns inquiries newest first.
// PRE: limit > 0
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Inquiry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, email, message, visitor_id, created_at
		FROM inquiry
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	out := []domain.Inquiry{}
	for rows.Next() {
		var i domain.Inquiry
		var createdAt string
		if err := rows.Scan(&i.ID, &i.ProductID, &i.Name, &i.Email, &i.Message, &i.VisitorID, &createdAt); err != nil {
			return nil, err
		}
		i.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, i)
	}
	return out, rows.Err()
}
