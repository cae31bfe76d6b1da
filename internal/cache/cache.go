// Package cache stores per-file results on disk, keyed on the content of the
// file and the settings that produced them.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const fileName = "tpath_cache.gob"

type entry[T any] struct {
	Key          uint64
	Value        T
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache maps file names to the last value computed for them. It is safe for
// concurrent use.
type Cache[T any] struct {
	dir     string
	mutex   sync.RWMutex
	entries map[string]entry[T]
	maxAge  time.Duration
}

// New opens the cache stored in dir, creating the directory when needed.
func New[T any](dir string) (*Cache[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache[T]{
		dir:     dir,
		entries: make(map[string]entry[T]),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

// Key fingerprints the content of a file together with salt, which should
// describe every setting the cached value depends on.
func Key(content []byte, salt string) uint64 {
	d := xxhash.New()
	_, _ = d.Write(content)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(salt)
	return d.Sum64()
}

func (c *Cache[T]) path() string {
	return filepath.Join(c.dir, fileName)
}

func (c *Cache[T]) load() error {
	file, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

func (c *Cache[T]) save() error {
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Get returns the value stored for filename when it was computed for key.
func (c *Cache[T]) Get(filename string, key uint64) (T, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero T
	e, ok := c.entries[filename]
	if !ok {
		return zero, false
	}
	if e.Key != key || (c.maxAge > 0 && time.Since(e.CreatedAt) > c.maxAge) {
		delete(c.entries, filename)
		return zero, false
	}

	e.LastAccessed = time.Now()
	c.entries[filename] = e
	return e.Value, true
}

// Set stores v for filename and writes the cache to disk.
func (c *Cache[T]) Set(filename string, key uint64, v T) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = entry[T]{
		Key:          key,
		Value:        v,
		CreatedAt:    now,
		LastAccessed: now,
	}
	return c.save()
}

// SetMaxAge expires entries older than d. Zero keeps entries forever.
func (c *Cache[T]) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

// Len returns the number of stored entries.
func (c *Cache[T]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// InvalidateAll drops every entry.
func (c *Cache[T]) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]entry[T])
	return c.save()
}
