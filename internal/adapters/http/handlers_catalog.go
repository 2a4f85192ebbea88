package web

import (
	"errors"
	"log/slog"
	"net/http"

	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/listutil"
	"storefront/internal/application/projections"
)

// handleCatalog lists products with search, category filter, sort and pagination.
func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	params := listutil.ParseListParams(r.URL.Query(), productStore.SortColumns, projections.CatalogFilterKeys)
	result, err := projections.QueryGetCatalogPage(r.Context(), projections.GetCatalogPageQuery{
		Params: params,
		Shelf:  shelfState(sh),
	}, projections.GetCatalogPageDeps{ProductStore: s.Products})
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.renderTemplate(w, r, "catalog.html", s.newPage(r, sh, "Catalog", map[string]any{
		"Result":         result,
		"PerPageOptions": listutil.PerPageOptions,
		"SortColumns":    productStore.SortColumns,
	}))
}

// handleProduct renders one product and records the view in Recently Viewed.
func (s *server) handleProduct(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	id := r.PathValue("id")
	result, err := projections.QueryGetProductDetail(r.Context(), projections.GetProductDetailQuery{
		ProductID: id,
		Shelf:     shelfState(sh),
	}, projections.GetProductDetailDeps{ProductStore: s.Products})
	if errors.Is(err, productStore.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if err := sh.Recent.RecordView(r.Context(), result.Product.ID); err != nil {
		slog.Warn("record_view_failed", "product_id", id, "error", err)
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.renderTemplate(w, r, "product.html", s.newPage(r, sh, result.Product.Name, result))
}

// handleFavorites lists the visitor's favorite products in insertion order.
func (s *server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	state := shelfState(sh)
	result, err := projections.QueryGetShelfProducts(r.Context(), projections.GetShelfProductsQuery{
		IDs:   state.Favorites,
		Shelf: state,
	}, projections.GetShelfProductsDeps{ProductStore: s.Products})
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.renderTemplate(w, r, "favorites.html", s.newPage(r, sh, "Favorites", result))
}

// handleCompare renders the attribute matrix for the compare set.
func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	result, err := projections.QueryGetCompareView(r.Context(), projections.GetCompareViewQuery{
		IDs: sh.Compare.Snapshot(),
	}, projections.GetCompareViewDeps{ProductStore: s.Products})
	if err != nil {
		internalError(w, err)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.renderTemplate(w, r, "compare.html", s.newPage(r, sh, "Compare", result))
}
