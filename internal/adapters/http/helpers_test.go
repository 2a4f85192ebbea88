package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"storefront/internal/adapters/email"
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/metrics"
	"storefront/internal/adapters/storage"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	"storefront/internal/adapters/storage/kv"
	productStore "storefront/internal/adapters/storage/product"
	"storefront/internal/application/shelf"
	"storefront/internal/config"
	domainProduct "storefront/internal/domain/product"
)

const testCSRFKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// testApp is a fully wired storefront over in-memory storage.
type testApp struct {
	Handler   http.Handler
	Shelves   *shelf.Shelves
	Products  *productStore.SQLiteStore
	Inquiries *inquiryStore.SQLiteStore
	Sender    *email.NoopSender
	Metrics   *metrics.Metrics
	Collector *perf.Collector
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	m := metrics.New()
	collector := perf.NewCollector(256)
	kvStore := shelf.NewKeyValue(kv.NewMemoryStore(), m, collector)
	opts := shelf.DefaultOptions()
	opts.Recorder = m
	shelves := shelf.NewShelves(kvStore, shelf.NewNotifier(m), opts)

	cfg := config.Default()
	cfg.CSRFKey = testCSRFKey
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000
	cfg.InquiryTo = "shop@example.com"

	app := &testApp{
		Shelves:   shelves,
		Products:  productStore.NewSQLiteStore(db),
		Inquiries: inquiryStore.NewSQLiteStore(db),
		Sender:    email.NewNoopSender(),
		Metrics:   m,
		Collector: collector,
	}
	h, err := NewMux(Deps{
		Products:  app.Products,
		Inquiries: app.Inquiries,
		Shelves:   shelves,
		Sender:    app.Sender,
		Metrics:   m,
		Collector: collector,
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	app.Handler = h
	app.seed(t)
	return app
}

func (a *testApp) seed(t *testing.T) {
	t.Helper()
	products := []domainProduct.Product{
		{ID: "tote", Name: "Canvas Tote", Description: "A **sturdy** tote.", PriceCents: 2500, Category: "bags", Attributes: map[string]string{"Material": "Canvas"}},
		{ID: "pack", Name: "Day Pack", PriceCents: 8900, Category: "bags", Attributes: map[string]string{"Material": "Nylon", "Volume": "20L"}},
		{ID: "mug", Name: "Enamel Mug", PriceCents: 1800, Category: "kitchen"},
		{ID: "bottle", Name: "Steel Bottle", PriceCents: 3200, Category: "kitchen"},
		{ID: "towel", Name: "Linen Towel", PriceCents: 1500, Category: "kitchen"},
	}
	for _, p := range products {
		if err := a.Products.Save(context.Background(), p); err != nil {
			t.Fatalf("seed %s: %v", p.ID, err)
		}
	}
}

func newVisitor() string {
	return uuid.New().String()
}

// do sends a JSON request as visitor and returns the recorder.
func (a *testApp) do(t *testing.T, method, path, body, visitor string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if visitor != "" {
		req.AddCookie(&http.Cookie{Name: middleware.VisitorCookieName, Value: visitor})
	}
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)
	return rr
}

// page fetches an HTML page as visitor.
func (a *testApp) page(t *testing.T, path, visitor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookieName, Value: visitor})
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}
