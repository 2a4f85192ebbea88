package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// FileStore keeps one file per key under <dir>/<namespace>/<name>.json.
// Several processes may share a directory; Watch reports the keys the others write.
type FileStore struct {
	dir string

	mu  sync.Mutex
	own map[string][]byte // last value this store wrote per key
}

// NewFileStore creates the directory if needed.
// PRE: dir is writable
// POST: returns a store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	return &FileStore{dir: dir, own: make(map[string][]byte)}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(namespace, name string) string {
	return filepath.Join(s.dir, namespace, name+fileExt)
}

// Get reads the file for key.
// PRE: key is a valid <namespace>/<name> key
// POST: Returns the file contents and true, or nil and false when absent
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	ns, name, err := SplitKey(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.path(ns, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read kv file %s: %w", key, err)
	}
	return b, true, nil
}

// Put writes value atomically with a temp file and rename.
// PRE: key is a valid <namespace>/<name> key
// POST: The file holds value; readers never observe a partial write
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	ns, name, err := SplitKey(key)
	if err != nil {
		return err
	}
	nsDir := filepath.Join(s.dir, ns)
	if err := os.MkdirAll(nsDir, 0o755); err != nil {
		return fmt.Errorf("create kv namespace %s: %w", ns, err)
	}
	tmp, err := os.CreateTemp(nsDir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create kv temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write kv temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close kv temp file: %w", err)
	}

	s.mu.Lock()
	s.own[key] = append([]byte(nil), value...)
	s.mu.Unlock()

	if err := os.Rename(tmpName, s.path(ns, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename kv file %s: %w", key, err)
	}
	return nil
}

// Namespaces lists namespace directories, sorted.
func (s *FileStore) Namespaces(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list kv namespaces: %w", err)
	}
	out := []string{}
	for _, e := range entries {
		if e.IsDir() && validSegment(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Watch reports keys changed by other writers until ctx is done.
// PRE: onChange is non-nil
// POST: onChange is called from the watch goroutine only; returns nil on ctx cancellation
func (s *FileStore) Watch(ctx context.Context, onChange func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	namespaces, err := s.Namespaces(ctx)
	if err != nil {
		return err
	}
	for _, ns := range namespaces {
		if err := w.Add(filepath.Join(s.dir, ns)); err != nil {
			slog.Warn("kv_watch_add_failed", "namespace", ns, "error", err)
		}
	}
	slog.Info("kv_watch_started", "dir", s.dir, "namespaces", len(namespaces))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleEvent(w, event, onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("kv_watch_error", "error", err)
		}
	}
}

// handleEvent maps one filesystem event onto zero or more changed keys.
func (s *FileStore) handleEvent(w *fsnotify.Watcher, event fsnotify.Event, onChange func(string)) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, err := filepath.Rel(s.dir, event.Name)
	if err != nil {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	switch len(parts) {
	case 1:
		// A namespace directory appeared; files may already be inside it.
		if event.Op&fsnotify.Create == 0 || !validSegment(parts[0]) {
			return
		}
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return
		}
		if err := w.Add(event.Name); err != nil {
			slog.Warn("kv_watch_add_failed", "namespace", parts[0], "error", err)
			return
		}
		entries, _ := os.ReadDir(event.Name)
		for _, e := range entries {
			if name, ok := strings.CutSuffix(e.Name(), fileExt); ok && validSegment(name) {
				s.report(Key(parts[0], name), onChange)
			}
		}
	case 2:
		name, ok := strings.CutSuffix(parts[1], fileExt)
		if !ok || !validSegment(parts[0]) || !validSegment(name) {
			return
		}
		s.report(Key(parts[0], name), onChange)
	}
}

// report calls onChange unless the current contents are what this store last wrote.
func (s *FileStore) report(key string, onChange func(string)) {
	ns, name, _ := SplitKey(key)
	current, err := os.ReadFile(s.path(ns, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return
	}

	s.mu.Lock()
	own, wrote := s.own[key]
	if wrote && err == nil && bytes.Equal(own, current) {
		s.mu.Unlock()
		return
	}
	delete(s.own, key)
	s.mu.Unlock()

	slog.Debug("kv_external_change", "key", key)
	onChange(key)
}
