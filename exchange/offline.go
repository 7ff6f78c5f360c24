package exchange

import (
	"context"
	"time"

	"expensecheck/internal/logger"
)

// OfflineClient serves a fixed rate table without network access, for
// development and tests. Unlike the HTTP client, an unknown currency
// falls back to a 1:1 rate with a logged warning instead of failing;
// that relaxation is deliberate and limited to this variant.
type OfflineClient struct {
	rates Table
	delay time.Duration
}

// NewOfflineClient creates an offline client with the demo rate table.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{
		rates: Table{
			"USD": 1,
			"CLP": 950,
			"MXN": 20,
			"EUR": 0.85,
		},
		delay: 10 * time.Millisecond,
	}
}

// NewOfflineClientWithTable creates an offline client serving a caller
// supplied table, useful for deterministic tests.
func NewOfflineClientWithTable(rates Table) *OfflineClient {
	return &OfflineClient{rates: rates}
}

// Rate returns the fixed rate for currency, ignoring the date. The small
// delay mimics a network round trip.
func (c *OfflineClient) Rate(ctx context.Context, date, currency string) (float64, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	rate, ok := c.rates[currency]
	if !ok {
		logger.Warn("currency not in offline table, assuming 1:1", "currency", currency)
		return 1, nil
	}
	return rate, nil
}
