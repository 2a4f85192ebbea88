package middleware

import (
	"bufio"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/adapters/http/perf"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Hijack lets the websocket upgrade take over the connection.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	sw.status = http.StatusSwitchingProtocols
	return http.NewResponseController(sw.ResponseWriter).Hijack()
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// TimingOptions configures the Timing middleware. Every field is optional.
type TimingOptions struct {
	Collector *perf.Collector
	Slow      time.Duration // 0 uses DefaultSlowRequest
	// Route maps a request onto a low-cardinality label such as
	// "GET /products/{id}". Defaults to method and path.
	Route func(r *http.Request) string
	// Observe receives every timed request, e.g. for Prometheus.
	Observe func(route string, status int, d time.Duration)
}

// Timing returns middleware that logs request duration.
// Requests to /static/ are excluded.
// Normal requests log at DEBUG; slow requests (above threshold) log at WARN.
func Timing(opts TimingOptions) func(http.Handler) http.Handler {
	threshold := opts.Slow
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	route := opts.Route
	if route == nil {
		route = func(r *http.Request) string { return r.Method + " " + r.URL.Path }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)
			label := route(r)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				level := slog.LevelDebug
				msg := "request"
				if elapsed >= threshold {
					level = slog.LevelWarn
					msg = "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"route", label,
					"status", sw.status,
					"duration_ms", durationMs,
				)

				if opts.Collector != nil {
					opts.Collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Label:      label,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}
				if opts.Observe != nil {
					opts.Observe(label, sw.status, elapsed)
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
