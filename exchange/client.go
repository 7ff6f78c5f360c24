// Package exchange supplies currency exchange rates for a given calendar
// date, with per-date caching of the complete rate table.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the Open Exchange Rates API root.
const DefaultBaseURL = "https://openexchangerates.org/api"

// Table is the full set of currency -> rate entries returned by the
// upstream API for one date. A rate is expressed as units of that
// currency per one unit of the API's base currency.
type Table map[string]float64

// RateClient supplies the exchange rate for a date/currency pair.
type RateClient interface {
	Rate(ctx context.Context, date, currency string) (float64, error)
}

// ErrCurrencyNotFound marks lookups where the upstream (or a cached
// table) answered but did not contain the requested currency.
var ErrCurrencyNotFound = errors.New("currency not found in rate table")

// ErrMalformedResponse marks upstream responses missing the rates table.
var ErrMalformedResponse = errors.New("response missing rates table")

// LookupError reports a failed rate lookup: upstream unavailable, a
// malformed response, or the requested currency absent from the table.
type LookupError struct {
	Date     string
	Currency string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("rate lookup for %s on %s: %v", e.Currency, e.Date, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// apiResponse mirrors the upstream JSON body. Only Rates is required.
type apiResponse struct {
	Disclaimer string `json:"disclaimer,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	Base       string `json:"base,omitempty"`
	Rates      Table  `json:"rates"`
}

// ClientConfig holds configuration for the HTTP rate client.
type ClientConfig struct {
	// BaseURL of the rates API. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is passed as the app_id query parameter.
	APIKey string

	// Timeout bounds each upstream call. Defaults to 10s.
	Timeout time.Duration

	// CacheEnabled toggles the per-date table cache. When false every
	// call fetches and the cache is never read or written.
	CacheEnabled bool

	// Cache to use. Defaults to a fresh in-memory cache.
	Cache RateCache
}

// DefaultClientConfig returns the configuration used in production: the
// public API root, a 10s timeout and an enabled in-memory cache.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:      DefaultBaseURL,
		APIKey:       apiKey,
		Timeout:      10 * time.Second,
		CacheEnabled: true,
	}
}

// Client fetches rates over HTTP. With caching enabled the complete table
// returned for a date is stored under that date key, so repeated lookups
// for the same date across a batch cost one upstream call. A cache hit is
// authoritative: a currency missing from a cached table is a LookupError,
// never a re-fetch.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	cache        RateCache
	cacheEnabled bool
	breaker      *gobreaker.CircuitBreaker
	now          func() time.Time
}

// NewClient creates an HTTP rate client from cfg.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Cache == nil {
		cfg.Cache = NewInMemoryRateCache()
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cache:        cfg.Cache,
		cacheEnabled: cfg.CacheEnabled,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "exchange-rates",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		now: time.Now,
	}
}

// Rate returns the exchange rate for currency on date. The date selects
// the endpoint: today's date (calendar string equality, UTC) uses
// latest.json, any other date uses historical/{date}.json.
func (c *Client) Rate(ctx context.Context, date, currency string) (float64, error) {
	if c.cacheEnabled {
		if table, ok := c.cache.Get(ctx, date); ok {
			rate, ok := table[currency]
			if !ok {
				return 0, &LookupError{Date: date, Currency: currency, Err: ErrCurrencyNotFound}
			}
			return rate, nil
		}
	}

	table, err := c.fetch(ctx, date)
	if err != nil {
		return 0, &LookupError{Date: date, Currency: currency, Err: err}
	}

	rate, ok := table[currency]
	if !ok {
		return 0, &LookupError{Date: date, Currency: currency, Err: ErrCurrencyNotFound}
	}

	if c.cacheEnabled {
		c.cache.Set(ctx, date, table)
	}

	return rate, nil
}

// ClearCache drops every cached table.
func (c *Client) ClearCache(ctx context.Context) {
	c.cache.Clear(ctx)
}

// ClearCacheDate drops the cached table for one date.
func (c *Client) ClearCacheDate(ctx context.Context, date string) {
	c.cache.ClearDate(ctx, date)
}

// CacheSize reports how many dates are currently cached.
func (c *Client) CacheSize(ctx context.Context) int {
	return c.cache.Size(ctx)
}

func (c *Client) fetch(ctx context.Context, date string) (Table, error) {
	url := c.endpointURL(date)

	out, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call rates API: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from rates API", resp.StatusCode)
		}

		var body apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if body.Rates == nil {
			return nil, ErrMalformedResponse
		}
		return body.Rates, nil
	})
	if err != nil {
		return nil, err
	}

	return out.(Table), nil
}

func (c *Client) endpointURL(date string) string {
	if date == c.today() {
		return fmt.Sprintf("%s/latest.json?app_id=%s", c.baseURL, c.apiKey)
	}
	return fmt.Sprintf("%s/historical/%s.json?app_id=%s", c.baseURL, date, c.apiKey)
}

func (c *Client) today() string {
	return c.now().UTC().Format("2006-01-02")
}
