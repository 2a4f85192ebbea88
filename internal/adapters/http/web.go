package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"storefront/internal/adapters/email"
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/metrics"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/shelf"
	"storefront/internal/config"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed static
var embeddedStatic embed.FS

// Deps holds everything the HTTP layer needs. Shelves, Products and
// Inquiries are required; the rest fall back to no-op implementations.
type Deps struct {
	Products  productStore.Store
	Inquiries inquiryStore.Store
	Shelves   *shelf.Shelves
	Sender    email.Sender
	Metrics   *metrics.Metrics
	Collector *perf.Collector
	Config    config.Config

	// Done is closed when the server shuts down; it ends live event streams,
	// which http.Server.Shutdown does not track once hijacked.
	Done <-chan struct{}

	// Now and GenerateID are overridden by tests.
	Now        func() time.Time
	GenerateID func() string
}

// server carries the injected dependencies into the handlers.
type server struct {
	Deps
	templates fs.FS
}

// loadCSRFKey decodes the hex-encoded 32-byte CSRF secret from cfg.
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(cfg config.Config) ([]byte, error) {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, errors.New("STOREFRONT_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if cfg.Production() {
		return nil, errors.New("STOREFRONT_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "form tokens won't survive restart; set STOREFRONT_CSRF_KEY")
	return key, nil
}

// NewMux wires HTTP handlers for the storefront.
// PRE: deps.Products, deps.Inquiries and deps.Shelves are set
// POST: returns the handler with the full middleware chain applied
func NewMux(deps Deps) (http.Handler, error) {
	if deps.Products == nil || deps.Inquiries == nil || deps.Shelves == nil {
		return nil, errors.New("web: products, inquiries and shelves are required")
	}
	if deps.Sender == nil {
		deps.Sender = email.NewNoopSender()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = generateID
	}

	s := &server{Deps: deps}
	s.templates = assetFS(deps.Config.TemplatesDir, embeddedTemplates, "templates")
	static := assetFS(deps.Config.StaticDir, embeddedStatic, "static")

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	s.registerRoutes(mux)

	csrfKey, err := loadCSRFKey(deps.Config)
	if err != nil {
		return nil, err
	}
	cfg := deps.Config
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)

	timing := middleware.TimingOptions{
		Collector: deps.Collector,
		Slow:      cfg.SlowRequest,
		Route: func(r *http.Request) string {
			if _, pattern := mux.Handler(r); pattern != "" {
				return pattern
			}
			return "unmatched"
		},
	}
	if deps.Metrics != nil {
		timing.Observe = deps.Metrics.ObserveRequest
	}

	// Timing -> Visitor -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, middleware.CSRFOptions{Secure: cfg.Production()}),
		middleware.RateLimit(limiter),
		middleware.Visitor(cfg.Production()),
		middleware.Timing(timing),
	), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleCatalog)
	mux.HandleFunc("GET /products/{id}", s.handleProduct)
	mux.HandleFunc("GET /favorites", s.handleFavorites)
	mux.HandleFunc("GET /compare", s.handleCompare)
	mux.HandleFunc("GET /checkout", s.handleCheckoutForm)
	mux.HandleFunc("POST /checkout", s.handleCheckout)

	mux.HandleFunc("POST /api/inquiries", s.handleInquiry)

	mux.HandleFunc("GET /api/shelf", s.handleShelf)
	mux.HandleFunc("GET /api/shelf/events", s.handleShelfEvents)
	mux.HandleFunc("POST /api/shelf/recent", s.handleRecordView)
	mux.HandleFunc("POST /api/shelf/{list}", s.handleShelfAdd)
	mux.HandleFunc("POST /api/shelf/{list}/toggle", s.handleShelfToggle)
	mux.HandleFunc("DELETE /api/shelf/{list}/{id}", s.handleShelfRemove)
	mux.HandleFunc("DELETE /api/shelf/{list}", s.handleShelfClear)

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("GET /debug/perf", s.handlePerf)
}

// assetFS serves dir from disk when it exists, otherwise the embedded copy.
func assetFS(dir string, embedded embed.FS, sub string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
		slog.Warn("asset_dir_missing", "dir", dir, "fallback", "embedded")
	}
	f, err := fs.Sub(embedded, sub)
	if err != nil {
		panic(err)
	}
	return f
}
