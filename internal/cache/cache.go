// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes full ranked result lists per normalized query.
// Pagination happens after lookup, so every page of one query is served by
// a single entry. Entries expire after a TTL, the least recently used entry
// is evicted past capacity, and concurrent misses on one key share a single
// ranking computation.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

const (
	// DefaultTTL is how long entries stay fresh unless configured otherwise.
	DefaultTTL = 60 * time.Second

	// DefaultMaxEntries bounds the cache unless configured otherwise.
	DefaultMaxEntries = 128
)

// ComputeFunc produces the full ranked result list for a query.
type ComputeFunc func() ([]types.SearchResult, error)

// Cache memoizes ranked result lists keyed by normalized query text.
// A zero-or-negative TTL disables storage entirely: every call computes,
// results unchanged, only latency differs.
type Cache struct {
	ttl time.Duration
	max int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front is the most recently used

	group singleflight.Group

	// now is the clock; tests substitute it for TTL determinism.
	now func() time.Time
}

type entry struct {
	key      string
	results  []types.SearchResult
	storedAt time.Time
}

// New builds a cache holding at most maxEntries queries for ttl each.
// maxEntries below 1 falls back to DefaultMaxEntries.
func New(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// Normalize returns the cache key for a query: trimmed and lowercased.
// Page and size never participate in the key.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// result is what a flight hands to every caller attached to it.
type result struct {
	results   []types.SearchResult
	fromStore bool
}

// Get returns the full ranked list for query, running compute at most once
// across concurrent callers of the same key. fromCache reports whether the
// list came from a stored entry or from a flight shared with another
// caller. A caller whose ctx ends stops waiting, but the in-flight
// computation keeps running and still populates the cache.
func (c *Cache) Get(ctx context.Context, query string, compute ComputeFunc) (results []types.SearchResult, fromCache bool, err error) {
	key := Normalize(query)

	if cached, ok := c.lookup(key); ok {
		return cached, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A finished flight may have stored the entry between our miss
		// and joining the group.
		if cached, ok := c.lookup(key); ok {
			return result{results: cached, fromStore: true}, nil
		}
		computed, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(key, computed)
		return result{results: computed}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		r := res.Val.(result)
		return r.results, r.fromStore || res.Shared, nil
	}
}

// lookup returns a fresh entry's list and bumps its recency. Entries whose
// age has reached the TTL are dropped and reported absent.
func (c *Cache) lookup(key string) ([]types.SearchResult, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if c.now().Sub(ent.storedAt) >= c.ttl {
		c.lru.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.lru.MoveToFront(el)
	return ent.results, true
}

// store inserts or refreshes an entry; the TTL clock starts here, after
// the computation has finished. The least recently used entries are
// evicted once the capacity is exceeded.
func (c *Cache) store(key string, results []types.SearchResult) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry)
		ent.results = results
		ent.storedAt = c.now()
		c.lru.MoveToFront(el)
		return
	}

	c.entries[key] = c.lru.PushFront(&entry{
		key:      key,
		results:  results,
		storedAt: c.now(),
	})
	for c.lru.Len() > c.max {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Purge drops every entry. The engine calls this when the corpus index is
// replaced so stale rankings cannot outlive the data they ranked.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
