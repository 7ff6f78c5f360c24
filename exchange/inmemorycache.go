package exchange

import (
	"context"
	"maps"
	"sync"
)

// InMemoryRateCache is a simple in-memory implementation of RateCache.
// Thread-safe for concurrent access; tables are copied on read and write
// so callers can never mutate a stored entry.
type InMemoryRateCache struct {
	tables map[string]Table
	mu     sync.RWMutex
}

// NewInMemoryRateCache creates a new in-memory rate cache.
func NewInMemoryRateCache() *InMemoryRateCache {
	return &InMemoryRateCache{
		tables: make(map[string]Table),
	}
}

// Get retrieves the table cached for date.
func (c *InMemoryRateCache) Get(ctx context.Context, date string) (Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, ok := c.tables[date]
	if !ok {
		return nil, false
	}
	return maps.Clone(table), true
}

// Set stores the complete table under date. The write replaces any
// previous entry in one step.
func (c *InMemoryRateCache) Set(ctx context.Context, date string, table Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[date] = maps.Clone(table)
}

// ClearDate drops the entry for one date.
func (c *InMemoryRateCache) ClearDate(ctx context.Context, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tables, date)
}

// Clear drops every entry.
func (c *InMemoryRateCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables = make(map[string]Table)
}

// Size reports the number of cached dates.
func (c *InMemoryRateCache) Size(ctx context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.tables)
}
