package web

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/application/orchestrators"
	"storefront/internal/application/projections"
	"storefront/internal/domain/checkout"
)

type checkoutRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// checkoutView backs checkout.html: the form, and the quote once submitted.
type checkoutView struct {
	Products []projections.ProductCard
	Quote    *checkout.Quote
	Error    string
}

// handleCheckoutForm lists the products to check out: ?product=<id> for a
// single item, otherwise the visitor's favorites.
func (s *server) handleCheckoutForm(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	state := shelfState(sh)
	ids := state.Favorites
	if id := strings.TrimSpace(r.URL.Query().Get("product")); id != "" {
		ids = []string{id}
	}
	result, err := projections.QueryGetShelfProducts(r.Context(), projections.GetShelfProductsQuery{
		IDs:   ids,
		Shelf: state,
	}, projections.GetShelfProductsDeps{ProductStore: s.Products})
	if err != nil {
		internalError(w, err)
		return
	}
	s.renderTemplate(w, r, "checkout.html", s.newPage(r, sh, "Checkout", checkoutView{Products: result.Products}))
}

// handleCheckout quotes the submitted items. No payment is taken and nothing
// is persisted.
func (s *server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	var items []orchestrators.CheckoutItem
	if isJSON {
		var req checkoutRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		for _, it := range req.Items {
			items = append(items, orchestrators.CheckoutItem{ProductID: strings.TrimSpace(it.ProductID), Quantity: it.Quantity})
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		// One product_id per line, quantities in qty_<product_id>.
		for _, id := range r.Form["product_id"] {
			id = strings.TrimSpace(id)
			qty, err := strconv.Atoi(r.FormValue("qty_" + id))
			if err != nil {
				qty = 1
			}
			if qty == 0 {
				continue
			}
			items = append(items, orchestrators.CheckoutItem{ProductID: id, Quantity: qty})
		}
	}

	visitor, _ := middleware.VisitorFromContext(r.Context())
	quote, err := orchestrators.ExecuteCheckout(r.Context(), orchestrators.CheckoutCommand{
		Items:     items,
		VisitorID: visitor,
	}, orchestrators.CheckoutDeps{ProductStore: s.Products, GenerateRef: s.GenerateID})

	if err != nil && !orchestrators.IsCheckoutInputError(err) {
		internalError(w, err)
		return
	}

	if isJSON {
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, quote)
		return
	}

	sh, shErr := s.visitorShelf(r)
	if shErr != nil {
		internalError(w, shErr)
		return
	}
	view := checkoutView{}
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadRequest
		view.Error = err.Error()
	} else {
		view.Quote = &quote
	}
	s.renderTemplateStatus(w, r, status, "checkout.html", s.newPage(r, sh, "Checkout", view))
}
