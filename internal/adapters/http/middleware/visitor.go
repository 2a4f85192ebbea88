package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const visitorContextKey contextKey = "visitor"

// VisitorCookieName holds the anonymous visitor ID. All shelf state is
// namespaced by it, so every tab of one browser shares the same shelf.
const VisitorCookieName = "storefront_visitor"

// visitorCookieMaxAge keeps a visitor's shelf for a year of inactivity.
const visitorCookieMaxAge = 365 * 24 * time.Hour

// Visitor returns middleware that resolves the visitor ID from the cookie,
// issuing a fresh UUID when the cookie is missing or malformed.
// POST: the request context always carries a visitor ID
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(VisitorCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), id)))
		})
	}
}

// WithVisitor returns ctx carrying the visitor ID.
func WithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorContextKey, id)
}

// VisitorFromContext retrieves the visitor ID set by Visitor.
func VisitorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorContextKey).(string)
	return id, ok && id != ""
}
