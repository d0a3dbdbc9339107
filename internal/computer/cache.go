package computer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
)

// Cache stores task results across Get calls, keyed by a content
// fingerprint of the task and its resolved inputs. It is an explicit,
// opt-in layer: install one with WithCache. Within a single Get call,
// memoization happens regardless.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	hits    int
	misses  int
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

func (c *Cache) get(fp string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[fp]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *Cache) put(fp string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = v
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts observed so far.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every cached result.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// fingerprint derives a cache key from the operator name, the resolved
// positional inputs, and the named options. Fields are length-prefixed so
// that adjacent values cannot be confused, and map entries are written in
// sorted key order for determinism.
func fingerprint(op string, args []any, kwargs map[string]any) string {
	h := sha256.New()

	writeField := func(data []byte) {
		n := uint64(len(data))
		h.Write([]byte{
			byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
			byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
		})
		h.Write(data)
	}

	writeField([]byte(op))

	writeField([]byte{byte(len(args))})
	for _, a := range args {
		writeField([]byte(digest(a)))
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	writeField([]byte{byte(len(names))})
	for _, name := range names {
		writeField([]byte(name))
		writeField([]byte(digest(kwargs[name])))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// contentDigester is implemented by values whose String renders only a
// summary and that supply a full-content rendering for fingerprinting.
// Quantities implement it; their String shows the header alone, which is
// not enough to tell two resolved inputs apart.
type contentDigester interface {
	ContentDigest() string
}

// digest renders a value for fingerprinting. Values exposing a content
// digest use it; other Stringers use their String; everything else falls
// back to the verb-formatted value, which formats map keys in sorted order.
func digest(v any) string {
	switch t := v.(type) {
	case contentDigester:
		return fmt.Sprintf("%T|%s", v, t.ContentDigest())
	case fmt.Stringer:
		return fmt.Sprintf("%T|%s", v, t.String())
	default:
		return fmt.Sprintf("%T|%v", v, v)
	}
}
