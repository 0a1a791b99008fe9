// Package cache caches query derivations so repeated requests for the same
// (region, query) pair reuse one PagedQuery instance, with an optional
// pebble-backed store persisting derived keys queries across restarts.
package cache

import (
	"context"
	"time"

	"github.com/guileen/oqlpager/logger"
	"github.com/guileen/oqlpager/oql"
)

const keySeparator = "\x00"

// DerivedEntry is one persisted derivation result for a (region, query) pair.
type DerivedEntry struct {
	RegionPath string    `json:"region_path"`
	Query      string    `json:"query"`
	KeysQuery  string    `json:"keys_query"`
	DerivedAt  time.Time `json:"derived_at"`
}

// Config configures the derived-query cache.
type Config struct {
	// Capacity bounds the in-memory tier. Defaults to 256.
	Capacity int
	// TTL expires in-memory entries. Zero disables expiration.
	TTL time.Duration
	// Store is the optional persistent tier.
	Store *Store
}

// DerivedQueries is a two-tier cache of query derivations: an in-memory LRU
// of live PagedQuery instances in front of an optional persistent store of
// derived keys-query statements.
type DerivedQueries struct {
	lru   *LRU
	store *Store
}

// New creates a DerivedQueries cache.
func New(config Config) *DerivedQueries {
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = 256
	}

	var lru *LRU
	if config.TTL > 0 {
		lru = NewLRUWithExpiration(capacity, config.TTL)
	} else {
		lru = NewLRU(capacity)
	}

	return &DerivedQueries{lru: lru, store: config.Store}
}

// GetOrCreate returns the cached PagedQuery for the (region, query) pair,
// creating and caching a new one on miss. Reusing the instance preserves its
// resolution state, so a values query can follow a keys query derived by an
// earlier request.
func (dq *DerivedQueries) GetOrCreate(target oql.Region, query string) (*oql.PagedQuery, error) {
	key := target.FullPath() + keySeparator + query

	if cached, ok := dq.lru.Get(key); ok {
		return cached, nil
	}

	pq, err := oql.NewPagedQuery(oql.PagedQueryConfig{Query: query, Region: target})
	if err != nil {
		return nil, err
	}

	dq.lru.Put(key, pq)

	return pq, nil
}

// Persist writes the derived keys query to the persistent tier, if one is
// configured. Persistence failures are logged, not propagated: the derived
// statements are already computed and the store is an inspection aid.
func (dq *DerivedQueries) Persist(ctx context.Context, entry *DerivedEntry) {
	if dq.store == nil {
		return
	}

	if entry.DerivedAt.IsZero() {
		entry.DerivedAt = time.Now().UTC()
	}

	if err := dq.store.Put(ctx, entry); err != nil {
		logger.WarnContext(ctx, "failed to persist derived query",
			"region", entry.RegionPath, "error", err)
	}
}

// Lookup reads a previously persisted derivation, returning ErrNotFound when
// the pair was never persisted or no store is configured.
func (dq *DerivedQueries) Lookup(ctx context.Context, regionPath, query string) (*DerivedEntry, error) {
	if dq.store == nil {
		return nil, ErrNotFound
	}
	return dq.store.Get(ctx, regionPath, query)
}

// Len returns the number of live entries in the in-memory tier.
func (dq *DerivedQueries) Len() int {
	return dq.lru.Len()
}
