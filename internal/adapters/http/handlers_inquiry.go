package web

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/application/orchestrators"
)

type inquiryRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// handleInquiry accepts a shopper question as JSON or a form post.
func (s *server) handleInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if isJSON {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		req = inquiryRequest{
			ProductID: r.FormValue("product_id"),
			Name:      r.FormValue("name"),
			Email:     r.FormValue("email"),
			Message:   r.FormValue("message"),
		}
	}

	productID := strings.TrimSpace(req.ProductID)
	visitor, _ := middleware.VisitorFromContext(r.Context())
	result, err := orchestrators.ExecuteSubmitInquiry(r.Context(), orchestrators.SubmitInquiryCommand{
		ProductID: productID,
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		VisitorID: visitor,
	}, orchestrators.SubmitInquiryDeps{
		InquiryStore: s.Inquiries,
		ProductStore: s.Products,
		Sender:       s.Sender,
		NotifyTo:     s.Config.InquiryTo,
		GenerateID:   s.GenerateID,
		Now:          s.Now,
	})
	switch {
	case errors.Is(err, orchestrators.ErrUnknownProduct):
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	case errors.Is(err, orchestrators.ErrInvalidInquiry):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	if !isJSON && productID != "" {
		http.Redirect(w, r, "/products/"+productID+"?inquiry=sent", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": result.ID, "emailed": result.Emailed})
}
