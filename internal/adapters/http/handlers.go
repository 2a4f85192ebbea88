package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/application/listutil"
	"storefront/internal/application/projections"
	"storefront/internal/application/shelf"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the error and returns a generic 500 to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// visitorShelf returns the shelf of the request's visitor.
func (s *server) visitorShelf(r *http.Request) (*shelf.Shelf, error) {
	id, _ := middleware.VisitorFromContext(r.Context())
	return s.Shelves.For(r.Context(), id)
}

func shelfState(sh *shelf.Shelf) projections.ShelfState {
	return projections.ShelfState{
		Favorites:  sh.Favorites.Snapshot(),
		Compare:    sh.Compare.Snapshot(),
		CompareMax: sh.Compare.Max(),
	}
}

// page is the data every template receives. Data holds the page-specific view.
type page struct {
	Title          string
	Visitor        string
	FavoritesCount int
	CompareCount   int
	CompareMax     int
	Recent         []projections.ProductCard
	Data           any
}

// newPage fills the layout fields: shelf counters and the recently viewed strip.
func (s *server) newPage(r *http.Request, sh *shelf.Shelf, title string, data any) page {
	p := page{
		Title:          title,
		Visitor:        sh.Visitor,
		FavoritesCount: sh.Favorites.Count(),
		CompareCount:   sh.Compare.Count(),
		CompareMax:     sh.Compare.Max(),
		Data:           data,
	}
	recent, err := projections.QueryGetShelfProducts(r.Context(), projections.GetShelfProductsQuery{
		IDs:   sh.Recent.Snapshot(),
		Shelf: shelfState(sh),
	}, projections.GetShelfProductsDeps{ProductStore: s.Products})
	if err != nil {
		slog.Warn("recent_strip_failed", "visitor", sh.Visitor, "error", err)
		return p
	}
	p.Recent = recent.Products
	return p
}

func (s *server) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data page) {
	s.renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders layout.html plus templateName with status.
// Nothing is written until the template has executed.
func (s *server) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data page) {
	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"pageQuery": func(p listutil.ListParams, n int) template.URL {
			return template.URL(p.WithPage(n).Query().Encode())
		},
		"sortQuery": func(p listutil.ListParams, col string) template.URL {
			return template.URL(p.SortBy(col).Query().Encode())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(s.templates, "layout.html", templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
