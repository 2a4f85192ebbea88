package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when the backing storage cannot be used at all.
var ErrUnavailable = errors.New("kv: storage unavailable")

// ErrInvalidKey is returned for keys that are not <namespace>/<name> with
// [A-Za-z0-9_-] segments.
var ErrInvalidKey = errors.New("kv: invalid key")

// Store persists opaque values under string keys.
type Store interface {
	// Get returns the value and true, or nil and false when no record exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Watcher is implemented by stores that can observe writes made by other
// processes sharing the same storage.
type Watcher interface {
	// Watch blocks until ctx is done, calling onChange for every key written
	// by someone other than this store.
	Watch(ctx context.Context, onChange func(key string)) error
}

// Lister is implemented by stores that can enumerate their namespaces.
type Lister interface {
	Namespaces(ctx context.Context) ([]string, error)
}

// Key joins a namespace and record name.
func Key(namespace, name string) string {
	return namespace + "/" + name
}

// SplitKey validates key and returns its namespace and name.
// PRE: none
// POST: returns ErrInvalidKey unless both segments are non-empty and URL safe
func SplitKey(key string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(key, "/")
	if !ok || !validSegment(namespace) || !validSegment(name) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return namespace, name, nil
}

// ValidNamespace reports whether s can be used as a key namespace.
func ValidNamespace(s string) bool {
	return validSegment(s)
}

func validSegment(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Unavailable is a Store whose every call fails with ErrUnavailable.
// It stands in for storage that is disabled or blocked.
type Unavailable struct{}

// Get always fails.
func (Unavailable) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

// Put always fails.
func (Unavailable) Put(context.Context, string, []byte) error {
	return ErrUnavailable
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Store   = (*SQLiteStore)(nil)
	_ Store   = (*FileStore)(nil)
	_ Store   = Unavailable{}
	_ Watcher = (*FileStore)(nil)
	_ Lister  = (*MemoryStore)(nil)
	_ Lister  = (*SQLiteStore)(nil)
	_ Lister  = (*FileStore)(nil)
)
