package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// Store error values
var (
	// ErrNotFound is returned when no entry exists for the requested pair
	ErrNotFound = errors.New("cache: entry not found")
	// ErrClosed is returned when the store has been closed
	ErrClosed = errors.New("cache: store closed")
)

// StoreConfig configures the persistent derived-query store.
type StoreConfig struct {
	Path         string
	CacheSize    int64
	MemTableSize int
	MaxOpenFiles int
}

// DefaultStoreConfig returns a StoreConfig sized for a derivation workload,
// which is small and read-mostly.
func DefaultStoreConfig(path string) *StoreConfig {
	return &StoreConfig{
		Path:         path,
		CacheSize:    64 << 20,
		MemTableSize: 16 << 20,
		MaxOpenFiles: 1000,
	}
}

// Store persists derived query entries in a pebble key-value database so
// derivations survive process restarts and can be inspected offline.
type Store struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

// NewStore opens the store at the configured path.
func NewStore(config *StoreConfig) (*Store, error) {
	blockCache := pebble.NewCache(config.CacheSize)
	defer blockCache.Unref()

	opts := &pebble.Options{
		Cache:        blockCache,
		MaxOpenFiles: config.MaxOpenFiles,
		MemTableSize: uint64(config.MemTableSize),
	}

	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	return &Store{db: db}, nil
}

func storeKey(regionPath, query string) []byte {
	return []byte(regionPath + keySeparator + query)
}

// Put writes the entry, keyed by region path and original query text.
func (s *Store) Put(ctx context.Context, entry *DerivedEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	return s.db.Set(storeKey(entry.RegionPath, entry.Query), value, pebble.NoSync)
}

// Get reads the entry for the (region path, query) pair.
func (s *Store) Get(ctx context.Context, regionPath, query string) (*DerivedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	value, closer, err := s.db.Get(storeKey(regionPath, query))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var entry DerivedEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}

	return &entry, nil
}

// Close closes the underlying database. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.db.Close()
}
