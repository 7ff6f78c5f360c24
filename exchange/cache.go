package exchange

import "context"

// RateCache abstracts per-date storage of complete rate tables. This
// allows swapping between in-memory and Redis-backed implementations.
//
// A stored table is always the full response for its date: entries are
// written atomically, never partially, so a reader either sees the whole
// table or a miss.
type RateCache interface {
	// Get retrieves the table cached for date, if any.
	Get(ctx context.Context, date string) (Table, bool)

	// Set stores the complete table under date.
	Set(ctx context.Context, date string, table Table)

	// ClearDate drops the entry for a single date.
	ClearDate(ctx context.Context, date string)

	// Clear drops every entry.
	Clear(ctx context.Context)

	// Size reports the number of cached dates.
	Size(ctx context.Context) int
}
