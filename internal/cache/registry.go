// Package cache keeps the last result of expensive operations on disk.
//
// A Registry holds one slot per operation name. All slots share a single
// expiry that starts when the first slot is written after a reset; once it
// passes every slot is dropped and the next call recomputes.
package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// contents is the on-disk shape of the cache file.
type contents struct {
	Expire time.Time
	Data   map[string][]byte
}

type Registry struct {
	mu         sync.Mutex
	path       string
	expiration time.Duration
	now        func() time.Time
	logger     *zap.Logger
	contents   contents
}

// NewRegistry loads the cache file at path. A missing, unreadable or expired
// file yields an empty cache.
func NewRegistry(path string, expiration time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		path:       path,
		expiration: expiration,
		now:        time.Now,
		logger:     logger,
		contents:   emptyContents(),
	}
	r.load()
	return r
}

func emptyContents() contents {
	return contents{Data: map[string][]byte{}}
}

func (r *Registry) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Debug("cache file unreadable", zap.String("path", r.path), zap.Error(err))
		}
		return
	}

	var c contents
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		r.logger.Debug("cache file corrupt, starting empty", zap.String("path", r.path), zap.Error(err))
		return
	}
	if c.Data == nil {
		c.Data = map[string][]byte{}
	}
	r.contents = c
	r.expireLocked()
}

// expireLocked drops every slot once the expiry has passed.
func (r *Registry) expireLocked() {
	if !r.contents.Expire.IsZero() && r.now().After(r.contents.Expire) {
		r.logger.Debug("cache expired", zap.Time("expire", r.contents.Expire))
		r.contents = emptyContents()
	}
}

// Lookup decodes the value stored under name into dst. It reports false when
// the slot is empty or expired.
func (r *Registry) Lookup(name string, dst any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	raw, ok := r.contents.Data[name]
	if !ok {
		return false, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", name, err)
	}
	return true, nil
}

// Store writes value under name and rewrites the cache file.
func (r *Registry) Store(name string, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	if len(r.contents.Data) == 0 {
		r.contents.Expire = r.now().Add(r.expiration)
	}
	r.contents.Data[name] = buf.Bytes()
	return r.persistLocked()
}

// Expire reports when the current entries stop being served. Zero when empty.
func (r *Registry) Expire() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	return r.contents.Expire
}

// Clear deletes the cache file and empties every slot.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contents = emptyContents()
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (r *Registry) persistLocked() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r.contents); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Remember returns the value cached under name, or runs fn and caches its
// value when fn reports ok. Results with ok=false are passed through without
// touching the cache. A failure to persist is logged, not returned, since the
// caller already has its value.
func Remember[T any](r *Registry, name string, fn func() (T, bool, error)) (T, error) {
	var cached T
	hit, err := r.Lookup(name, &cached)
	if err != nil {
		r.logger.Debug("ignoring cached value", zap.String("name", name), zap.Error(err))
	}
	if hit {
		r.logger.Debug("cache hit", zap.String("name", name))
		return cached, nil
	}

	value, ok, err := fn()
	if err != nil || !ok {
		return value, err
	}
	if err := r.Store(name, value); err != nil {
		r.logger.Warn("failed to persist cache", zap.String("path", r.path), zap.Error(err))
	}
	return value, nil
}
