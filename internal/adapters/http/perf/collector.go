package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // HTTP request
	KindQuery                    // SQL statement
	KindStorage                  // shelf key-value read/write
)

// String returns the label used in the debug snapshot.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindQuery:
		return "query"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Label      string // "GET /products/{id}", "QueryContext", "kv.write"
	StatusCode int    // HTTP status, 0 otherwise
	DurationMs float64
	Failed     bool
	Timestamp  time.Time
}

// Collector is a fixed-size ring of timing entries. Writers never block on
// readers for longer than a struct copy; aggregation happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written atomic.Int64
}

// NewCollector creates a collector holding the last size entries.
// PRE: size > 0; non-positive values use DefaultRingSize
// POST: returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
// Safe on a nil collector.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.written.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.written.Load()
}

// LabelStat aggregates timings for one label.
type LabelStat struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	TotalMs  float64 `json:"-"`
}

// Snapshot is the aggregated view served by the debug endpoint.
type Snapshot struct {
	TotalRecorded  int64       `json:"total_recorded"`
	RequestP50Ms   float64     `json:"request_p50_ms"`
	RequestP95Ms   float64     `json:"request_p95_ms"`
	RequestP99Ms   float64     `json:"request_p99_ms"`
	SlowestPaths   []LabelStat `json:"slowest_paths"`
	SlowestQueries []LabelStat `json:"slowest_queries"`
	Storage        []LabelStat `json:"storage"`
}

// Snapshot aggregates entries newer than since, keeping the topN slowest
// labels per kind.
// PRE: topN > 0
// POST: returns percentiles over request durations and per-kind top lists
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	var durations []float64
	byKind := map[EntryKind]map[string]*LabelStat{
		KindRequest: {},
		KindQuery:   {},
		KindStorage: {},
	}
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats, ok := byKind[e.Kind]
		if !ok {
			continue
		}
		if e.Kind == KindRequest {
			durations = append(durations, e.DurationMs)
		}
		s := stats[e.Label]
		if s == nil {
			s = &LabelStat{Label: e.Label}
			stats[e.Label] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.Failed {
			s.Failures++
		}
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		SlowestPaths:   slowest(byKind[KindRequest], topN),
		SlowestQueries: slowest(byKind[KindQuery], topN),
		Storage:        slowest(byKind[KindStorage], topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	out := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Label < out[j].Label
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
