package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/guileen/oqlpager/oql"
)

// LRU is a thread-safe, capacity-bounded cache of live PagedQuery instances
// with optional entry expiration. Holding the instance itself, not just its
// derived statements, preserves the resolution state across requests.
type LRU struct {
	capacity   int
	entries    map[string]*list.Element
	evictList  *list.List
	mutex      sync.Mutex
	expiration time.Duration
}

// lruEntry is one cached derivation.
type lruEntry struct {
	key       string
	query     *oql.PagedQuery
	timestamp time.Time
}

// NewLRU creates a new LRU cache with the specified capacity
func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity:  capacity,
		entries:   make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// NewLRUWithExpiration creates a new LRU cache whose entries expire
func NewLRUWithExpiration(capacity int, expiration time.Duration) *LRU {
	return &LRU{
		capacity:   capacity,
		entries:    make(map[string]*list.Element),
		evictList:  list.New(),
		expiration: expiration,
	}
}

// Get retrieves a cached PagedQuery
func (c *LRU) Get(key string) (*oql.PagedQuery, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	entry := element.Value.(*lruEntry)

	if c.expiration > 0 && time.Since(entry.timestamp) > c.expiration {
		c.removeElement(element)
		return nil, false
	}

	c.evictList.MoveToFront(element)

	return entry.query, true
}

// Put adds a PagedQuery to the cache
func (c *LRU) Put(key string, query *oql.PagedQuery) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, exists := c.entries[key]; exists {
		c.evictList.MoveToFront(element)
		entry := element.Value.(*lruEntry)
		entry.query = query
		entry.timestamp = time.Now()
		return
	}

	entry := &lruEntry{
		key:       key,
		query:     query,
		timestamp: time.Now(),
	}
	c.entries[key] = c.evictList.PushFront(entry)

	if c.evictList.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove removes a key from the cache
func (c *LRU) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, exists := c.entries[key]; exists {
		c.removeElement(element)
	}
}

// Len returns the number of items in the cache
func (c *LRU) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.evictList.Len()
}

// Clear removes all items from the cache
func (c *LRU) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*list.Element)
	c.evictList.Init()
}

func (c *LRU) evictOldest() {
	if element := c.evictList.Back(); element != nil {
		c.removeElement(element)
	}
}

func (c *LRU) removeElement(element *list.Element) {
	c.evictList.Remove(element)
	delete(c.entries, element.Value.(*lruEntry).key)
}
