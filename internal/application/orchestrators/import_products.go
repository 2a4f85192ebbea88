package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	productStore "storefront/internal/adapters/storage/product"
	domain "storefront/internal/domain/product"
)

// attrPrefix marks CSV columns that become product attributes ("ATTR:Material").
const attrPrefix = "ATTR:"

// ImportProductsInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row containing ID, NAME and PRICE.
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true.
// INVARIANT: Existing products are never deleted; CreatedAt is preserved on update.
type ImportProductsInput struct {
	Reader     io.Reader
	Operator   string
	DryRun     bool
	UpdateMode bool
}

// ImportProductsResult holds aggregate counts and per-row errors from an import run.
type ImportProductsResult struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errors  []ImportProductsRowError
	DryRun  bool
	Unknown []string
}

// ImportProductsRowError describes a validation or processing error for a single CSV row.
type ImportProductsRowError struct {
	Row     int
	Message string
}

// ImportProductsDeps holds external dependencies for the import orchestrator.
type ImportProductsDeps struct {
	ProductStore productStore.Store
}

// ExecuteImportProducts parses a CSV stream and creates or updates products.
// PRE: Input.Reader contains a CSV with at least ID, NAME and PRICE columns.
// POST: Products are created/updated/skipped according to DryRun and UpdateMode;
//
//	aggregate counts and per-row errors are returned.
//
// INVARIANT: When DryRun=true no writes occur.
func ExecuteImportProducts(ctx context.Context, input ImportProductsInput, deps ImportProductsDeps) (ImportProductsResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportProductsResult{}, &ImportProductsValidationError{Message: "CSV has no header row"}
	}

	colIdx := make(map[string]int, len(header))
	attrCols := map[string]int{}
	known := map[string]bool{"ID": true, "NAME": true, "PRICE": true, "CURRENCY": true, "CATEGORY": true, "DESCRIPTION": true, "IMAGE": true}
	var unknownCols []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		upper := strings.ToUpper(h)
		if strings.HasPrefix(upper, attrPrefix) {
			if name := strings.TrimSpace(h[len(attrPrefix):]); name != "" {
				attrCols[name] = i
			}
			continue
		}
		colIdx[upper] = i
		if !known[upper] {
			unknownCols = append(unknownCols, h)
		}
	}
	for _, required := range []string{"ID", "NAME", "PRICE"} {
		if _, ok := colIdx[required]; !ok {
			return ImportProductsResult{}, &ImportProductsValidationError{Message: "CSV missing required column: " + required}
		}
	}

	getCol := func(row []string, i int, ok bool) string {
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	col := func(row []string, name string) string {
		i, ok := colIdx[name]
		return getCol(row, i, ok)
	}

	result := ImportProductsResult{DryRun: input.DryRun, Unknown: unknownCols}
	rowNum := 1

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportProductsRowError{Row: rowNum, Message: "malformed row: " + err.Error()})
			continue
		}
		result.Total++

		price, err := domain.ParsePrice(col(row, "PRICE"))
		if err != nil {
			result.Errors = append(result.Errors, ImportProductsRowError{Row: rowNum, Message: fmt.Sprintf("invalid price %q", col(row, "PRICE"))})
			continue
		}
		p := domain.Product{
			ID:          col(row, "ID"),
			Name:        col(row, "NAME"),
			Description: col(row, "DESCRIPTION"),
			PriceCents:  price,
			Currency:    strings.ToUpper(col(row, "CURRENCY")),
			Category:    strings.ToLower(col(row, "CATEGORY")),
			ImageURL:    col(row, "IMAGE"),
			Attributes:  map[string]string{},
		}
		for name, i := range attrCols {
			if v := getCol(row, i, true); v != "" {
				p.Attributes[name] = v
			}
		}
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportProductsRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		existing, lookupErr := deps.ProductStore.GetByID(ctx, p.ID)
		exists := lookupErr == nil
		if lookupErr != nil && !errors.Is(lookupErr, productStore.ErrNotFound) {
			slog.Error("products_import_lookup_failed", "row", rowNum, "id", p.ID, "error", lookupErr)
			result.Errors = append(result.Errors, ImportProductsRowError{Row: rowNum, Message: "lookup failed (see server log)"})
			continue
		}

		if exists && !input.UpdateMode {
			result.Skipped++
			continue
		}
		if input.DryRun {
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}
		if exists {
			p.CreatedAt = existing.CreatedAt
		}
		if err := deps.ProductStore.Save(ctx, p); err != nil {
			slog.Error("products_import_save_failed", "row", rowNum, "id", p.ID, "error", err)
			result.Errors = append(result.Errors, ImportProductsRowError{Row: rowNum, Message: "save failed (see server log)"})
			continue
		}
		if exists {
			result.Updated++
		} else {
			result.Created++
		}
	}

	slog.Info("products_import",
		"operator", input.Operator,
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

// ImportProductsValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportProductsValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportProductsValidationError) Error() string {
	return e.Message
}
