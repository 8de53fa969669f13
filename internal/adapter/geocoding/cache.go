package geocoding

import (
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// CachedResolver wraps an AddressResolver with an in-memory LRU cache.
type CachedResolver struct {
	inner domain.AddressResolver
	cache *lruCache
}

// NewCachedResolver creates a cache decorator around an address resolver.
func NewCachedResolver(inner domain.AddressResolver, maxEntries int) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, address string) (domain.AddressResult, error) {
	key := cacheKey(address)
	if result, ok := c.cache.get(key); ok {
		return result, nil
	}
	result, err := c.inner.Resolve(ctx, address)
	if err != nil {
		// Failures, including not-found, stay uncached so they can be retried.
		return result, err
	}
	c.cache.put(key, result)
	return result, nil
}

// cacheKey collapses whitespace and composes diacritics, so "Łódź" typed with
// combining marks shares an entry with the precomposed form.
func cacheKey(address string) string {
	return norm.NFC.String(strings.Join(strings.Fields(address), " "))
}

// lruCache is a thread-safe LRU cache of AddressResults.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.AddressResult
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key string) (domain.AddressResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.AddressResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.AddressResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	for len(c.entries) > c.maxEntries && c.tail != nil {
		delete(c.entries, c.tail.key)
		c.unlink(c.tail)
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache) pushFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}
