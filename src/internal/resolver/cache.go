package resolver

import (
	"container/list"
	"net/netip"
	"sync"
	"time"
)

// answerEntry holds the addresses of one host and the moment the shortest
// record TTL among them runs out.
type answerEntry struct {
	addrs    []netip.Addr
	deadline time.Time
}

// AnswerCache keeps resolved answers in memory for the lifetime of a
// Resolver, bounded by the number of hosts. It is never written to disk.
type AnswerCache struct {
	mu sync.Mutex

	entries  map[string]answerEntry
	maxHosts int

	// front = least recently used
	lruList  *list.List
	lruIndex map[string]*list.Element

	now func() time.Time
}

// NewAnswerCache creates a cache holding at most maxHosts hosts.
func NewAnswerCache(maxHosts int) *AnswerCache {
	if maxHosts <= 0 {
		panic("maxHosts must be positive")
	}
	return &AnswerCache{
		entries:  make(map[string]answerEntry),
		maxHosts: maxHosts,
		lruList:  list.New(),
		lruIndex: make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns a copy of the cached addresses of host. Expired entries are
// dropped and reported as a miss.
func (c *AnswerCache) Get(host string) ([]netip.Addr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[host]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.deadline) {
		c.remove(host)
		return nil, false
	}

	c.touch(host)
	return append([]netip.Addr(nil), entry.addrs...), true
}

// Put stores addrs for host for ttl. Empty answers and zero TTLs are not cached.
func (c *AnswerCache) Put(host string, addrs []netip.Addr, ttl time.Duration) {
	if len(addrs) == 0 || ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[host] = answerEntry{
		addrs:    append([]netip.Addr(nil), addrs...),
		deadline: c.now().Add(ttl),
	}
	c.touch(host)
	c.evictIfNeeded()
}

// Len returns the number of cached hosts, expired ones included.
func (c *AnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictExpired removes every expired entry.
func (c *AnswerCache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for host, entry := range c.entries {
		if !now.Before(entry.deadline) {
			c.remove(host)
		}
	}
}

// Must be called with the lock held.
func (c *AnswerCache) touch(host string) {
	if elem, ok := c.lruIndex[host]; ok {
		c.lruList.MoveToBack(elem)
		return
	}
	c.lruIndex[host] = c.lruList.PushBack(host)
}

// Must be called with the lock held.
func (c *AnswerCache) evictIfNeeded() {
	for c.lruList.Len() > c.maxHosts {
		elem := c.lruList.Front()
		if elem == nil {
			break
		}
		c.remove(elem.Value.(string))
	}
}

// Must be called with the lock held.
func (c *AnswerCache) remove(host string) {
	delete(c.entries, host)
	if elem, ok := c.lruIndex[host]; ok {
		c.lruList.Remove(elem)
		delete(c.lruIndex, host)
	}
}
