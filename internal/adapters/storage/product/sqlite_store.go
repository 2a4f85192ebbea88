package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/product"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Product store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = `SELECT id, name, description, price_cents, currency, category, image_url, attributes, created_at FROM product`

// GetByID retrieves a product by ID.
// PRE: id is non-empty
// POST: Returns the product or ErrNotFound
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Product, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

// GetByIDs retrieves products in the order of ids. Unknown IDs are skipped.
// PRE: none
// POST: Returns at most len(ids) products, ordered like ids
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := []domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// where builds the WHERE clause shared by List and Count.
func where(f ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		clauses = append(clauses, "(lower(name) LIKE ? OR lower(description) LIKE ?)")
		args = append(args, like, like)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(f ListFilter) string {
	dir := "ASC"
	if f.Dir == "desc" {
		dir = "DESC"
	}
	switch f.Sort {
	case "price":
		return " ORDER BY price_cents " + dir + ", name ASC"
	case "newest":
		return " ORDER BY created_at DESC, id ASC"
	}
	return " ORDER BY name COLLATE NOCASE " + dir + ", id ASC"
}

// List returns products matching filter.
// PRE: none
// POST: Returns a page of products ordered per filter
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	clause, args := where(filter)
	query := selectColumns + clause + orderBy(filter)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of products matching filter, ignoring Limit and Offset.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	clause, args := where(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product`+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Save upserts a product.
// PRE: value passes Validate
// POST: Product is persisted (insert or update); CreatedAt is kept on update
// INVARIANT: No other products are modified
func (s *SQLiteStore) Save(ctx context.Context, value domain.Product) error {
	if err := value.Validate(); err != nil {
		return err
	}
	if value.Currency == "" {
		value.Currency = domain.DefaultCurrency
	}
	if value.CreatedAt.IsZero() {
		value.CreatedAt = time.Now().UTC()
	}
	attrs := value.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO product (id, name, description, price_cents, currency, category, image_url, attributes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price_cents = excluded.price_cents,
			currency = excluded.currency,
			category = excluded.category,
			image_url = excluded.image_url,
			attributes = excluded.attributes
	`, value.ID, value.Name, value.Description, value.PriceCents, value.Currency,
		value.Category, value.ImageURL, string(encoded), value.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save product %s: %w", value.ID, err)
	}
	return nil
}

// Categories returns the distinct non-empty categories, sorted.
func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM product WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanProduct(scan func(dest ...any) error) (domain.Product, error) {
	var p domain.Product
	var attrs, createdAt string
	if err := scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Category, &p.ImageURL, &attrs, &createdAt); err != nil {
		return domain.Product{}, err
	}
	if err := json.Unmarshal([]byte(attrs), &p.Attributes); err != nil {
		return domain.Product{}, fmt.Errorf("decode attributes for %s: %w", p.ID, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}
