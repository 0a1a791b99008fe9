package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/oqlpager/oql"
)

func newCachedQuery(t *testing.T, query string) *oql.PagedQuery {
	t.Helper()

	pq, err := oql.NewPagedQueryString(query)
	require.NoError(t, err)

	return pq
}

func TestLRUPutGet(t *testing.T) {
	lru := NewLRU(2)

	first := newCachedQuery(t, "SELECT * FROM /A a")
	lru.Put("a", first)
	lru.Put("b", newCachedQuery(t, "SELECT * FROM /B b"))

	cached, ok := lru.Get("a")
	require.True(t, ok)
	assert.Same(t, first, cached)

	_, ok = lru.Get("missing")
	assert.False(t, ok)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	lru := NewLRU(2)

	lru.Put("a", newCachedQuery(t, "SELECT * FROM /A a"))
	lru.Put("b", newCachedQuery(t, "SELECT * FROM /B b"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := lru.Get("a")
	require.True(t, ok)

	lru.Put("c", newCachedQuery(t, "SELECT * FROM /C c"))

	_, ok = lru.Get("b")
	assert.False(t, ok)

	_, ok = lru.Get("a")
	assert.True(t, ok)
	_, ok = lru.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, lru.Len())
}

func TestLRUUpdateExistingKey(t *testing.T) {
	lru := NewLRU(2)

	lru.Put("a", newCachedQuery(t, "SELECT * FROM /A a"))

	replacement := newCachedQuery(t, "SELECT * FROM /A a WHERE a.id = $1")
	lru.Put("a", replacement)

	cached, ok := lru.Get("a")
	require.True(t, ok)
	assert.Same(t, replacement, cached)
	assert.Equal(t, 1, lru.Len())
}

func TestLRUExpiration(t *testing.T) {
	lru := NewLRUWithExpiration(4, 10*time.Millisecond)

	lru.Put("a", newCachedQuery(t, "SELECT * FROM /A a"))

	_, ok := lru.Get("a")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = lru.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, lru.Len())
}

func TestLRURemoveAndClear(t *testing.T) {
	lru := NewLRU(4)

	lru.Put("a", newCachedQuery(t, "SELECT * FROM /A a"))
	lru.Put("b", newCachedQuery(t, "SELECT * FROM /B b"))

	lru.Remove("a")
	_, ok := lru.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, lru.Len())

	lru.Clear()
	assert.Equal(t, 0, lru.Len())
}
