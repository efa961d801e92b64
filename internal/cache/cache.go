// Package cache holds the per-user memo for expense range queries. Entries are
// bounded by an LRU size limit and a TTL, and every write to a user's expenses
// drops that user's entries and bumps their version so that a query that was
// in flight during the write cannot store a stale result.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"smartspend/internal/models"
)

const dateKeyLayout = "2006-01-02"

// RangeCache memoizes GetExpensesInRange results keyed by (user, start, end).
type RangeCache struct {
	mu       sync.Mutex
	maxSize  int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
	versions map[string]uint64
	now      func() time.Time
}

type rangeItem struct {
	key       string
	userID    string
	data      []models.Expense
	expiresAt time.Time
}

// NewRangeCache creates a cache holding at most maxSize ranges for ttl each.
func NewRangeCache(maxSize int, ttl time.Duration) *RangeCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &RangeCache{
		maxSize:  maxSize,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		versions: make(map[string]uint64),
		now:      time.Now,
	}
}

func rangeKey(userID string, start, end time.Time) string {
	return userID + "|" + start.Format(dateKeyLayout) + "|" + end.Format(dateKeyLayout)
}

// Version returns the user's current write generation. Callers read it before
// querying the database and hand it back to Put.
func (c *RangeCache) Version(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID]
}

// Get returns a copy of the cached range, if present and not expired.
func (c *RangeCache) Get(userID string, start, end time.Time) ([]models.Expense, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[rangeKey(userID, start, end)]
	if !exists {
		return nil, false
	}

	item := elem.Value.(*rangeItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return clone(item.data), true
}

// Put stores a range result computed at version. The result is discarded when
// the user's expenses changed after version was read.
func (c *RangeCache) Put(userID string, start, end time.Time, version uint64, data []models.Expense) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions[userID] != version {
		return false
	}

	key := rangeKey(userID, start, end)
	item := &rangeItem{
		key:       key,
		userID:    userID,
		data:      clone(data),
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return true
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return true
}

// Invalidate drops every cached range belonging to userID and bumps the
// user's version. Ranges of other users are untouched.
func (c *RangeCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[userID]++

	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*rangeItem).userID == userID {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
}

func (c *RangeCache) removeElement(elem *list.Element) {
	item := elem.Value.(*rangeItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *RangeCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*rangeItem).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of items in the cache
func (c *RangeCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Run sweeps expired entries every interval until ctx is done.
func (c *RangeCache) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.CleanExpired()
		}
	}
}

func clone(in []models.Expense) []models.Expense {
	if in == nil {
		return nil
	}
	out := make([]models.Expense, len(in))
	copy(out, in)
	return out
}
