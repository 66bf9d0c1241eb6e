package cover

import "container/list"

// Entry is one resolved cover image. PNGData is nil when the image file was
// found but could not be decoded; the entry is still cached so the same
// broken file is not decoded again for every song in the album.
type Entry struct {
	RootID  string
	RelPath string // image path relative to the source root
	PNGData []byte
	Width   int
	Height  int
}

func (e *Entry) cacheKey() string {
	return e.RootID + ":" + e.RelPath
}

// Cache is a bounded least-recently-used cache of decoded cover entries.
// Consecutive songs of one album resolve to the same image, so a small
// capacity is enough to avoid re-decoding while keeping image memory
// bounded. Not safe for concurrent use; the indexer drives it from a single
// scan sequence.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

// NewCache creates a cache holding at most capacity entries
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached entry for (rootID, relPath) and marks it most
// recently used
func (c *Cache) Get(rootID, relPath string) (*Entry, bool) {
	el, ok := c.items[rootID+":"+relPath]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*Entry), true
}

// Put inserts an entry as most recently used, evicting the least recently
// used entry if the cache is full
func (c *Cache) Put(entry *Entry) {
	key := entry.cacheKey()
	if el, ok := c.items[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(entry)
	if c.order.Len() > c.capacity {
		c.evict()
	}
}

func (c *Cache) evict() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	entry := c.order.Remove(oldest).(*Entry)
	delete(c.items, entry.cacheKey())
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.order.Len()
}

// Contains reports whether an entry for (rootID, relPath) is cached,
// without touching its recency
func (c *Cache) Contains(rootID, relPath string) bool {
	_, ok := c.items[rootID+":"+relPath]
	return ok
}
