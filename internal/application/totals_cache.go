package application

import (
	"sync"
	"time"
)

// totalsCache memoises daily totals for dates whose entries are all closed,
// avoiding repeated aggregation queries from dashboard polling. Days with an
// open entry are never cached because their totals tick live. Any command for
// an employee invalidates that employee's cached dates.
type totalsCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[totalsCacheKey]totalsCacheEntry
}

type totalsCacheKey struct {
	employeeID string
	date       string
}

type totalsCacheEntry struct {
	totals    DailyTotals
	expiresAt time.Time
}

func newTotalsCache(ttl time.Duration, maxEntries int, now func() time.Time) *totalsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if now == nil {
		now = time.Now
	}
	return &totalsCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[totalsCacheKey]totalsCacheEntry),
	}
}

func (c *totalsCache) Get(employeeID, date string) (DailyTotals, bool) {
	if c == nil {
		return DailyTotals{}, false
	}
	key := totalsCacheKey{employeeID: employeeID, date: date}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return DailyTotals{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return DailyTotals{}, false
	}
	return entry.totals, true
}

func (c *totalsCache) Store(employeeID, date string, totals DailyTotals) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[totalsCacheKey{employeeID: employeeID, date: date}] = totalsCacheEntry{totals: totals, expiresAt: expiry}
}

// Invalidate drops every cached date for the employee.
func (c *totalsCache) Invalidate(employeeID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.employeeID == employeeID {
			delete(c.entries, key)
		}
	}
}

func (c *totalsCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *totalsCache) evictOneLocked() {
	var (
		oldestKey totalsCacheKey
		oldest    time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
