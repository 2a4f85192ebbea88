package shelf

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/storage/kv"
)

// KeyValue reads and writes identifier lists as JSON through a kv.Store.
// Failures are logged and counted but never returned: callers keep their
// in-memory state and carry on.
type KeyValue struct {
	store     kv.Store
	recorder  Recorder
	collector *perf.Collector
}

// NewKeyValue wraps store. recorder and collector may be nil.
func NewKeyValue(store kv.Store, recorder Recorder, collector *perf.Collector) *KeyValue {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &KeyValue{store: store, recorder: recorder, collector: collector}
}

// Store returns the underlying backend.
func (k *KeyValue) Store() kv.Store {
	return k.store
}

// Read returns the identifiers stored under key.
// PRE: none
// POST: returns an empty list when the record is absent, corrupt or storage is unavailable
func (k *KeyValue) Read(ctx context.Context, key string) []string {
	start := time.Now()
	raw, ok, err := k.store.Get(ctx, key)
	k.observe("get", start, err)
	if err != nil {
		k.recorder.StorageFailure("get", failureKind(err))
		slog.Warn("kv_read_failed", "key", key, "error", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		k.recorder.StorageFailure("get", "decode")
		slog.Warn("kv_decode_failed", "key", key, "error", err)
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// Write persists ids under key as a JSON array.
// PRE: none
// POST: the record holds ids, or the failure has been logged and counted
func (k *KeyValue) Write(ctx context.Context, key string, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		k.recorder.StorageFailure("put", "encode")
		slog.Warn("kv_encode_failed", "key", key, "error", err)
		return
	}
	start := time.Now()
	err = k.store.Put(ctx, key, raw)
	k.observe("put", start, err)
	if err != nil {
		k.recorder.StorageFailure("put", failureKind(err))
		slog.Warn("kv_write_failed", "key", key, "error", err)
	}
}

func (k *KeyValue) observe(op string, start time.Time, err error) {
	k.collector.Record(perf.Entry{
		Kind:       perf.KindStorage,
		Label:      op,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Failed:     err != nil,
		Timestamp:  start,
	})
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, kv.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, kv.ErrInvalidKey):
		return "invalid_key"
	}
	return "io"
}
