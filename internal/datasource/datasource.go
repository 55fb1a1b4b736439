// Package datasource provides data fetching from the external collaborators:
// Alpha Vantage (ticker search, news sentiment feed), Yahoo Finance (price
// history, market cap), NewsAPI (article search), Yahoo RSS headlines, and
// Wikipedia (company summaries). Every source is rate-limited and unreliable;
// callers are expected to treat any error as non-fatal and fall back.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// --- Sentinel errors ---

// ErrNotFound is returned when no data exists for the query.
var ErrNotFound = errors.New("not found")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrProviderDown is returned for transient upstream failures and for
// providers left unconfigured at construction time.
var ErrProviderDown = errors.New("provider unavailable")

// ErrMalformed is returned when a payload cannot be parsed.
var ErrMalformed = errors.New("malformed provider response")

// ErrEmpty is returned when a source answers successfully but with no rows.
var ErrEmpty = errors.New("empty provider response")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the
// response body. The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/xml, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, resp.StatusCode, ErrRateLimited
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// --- Ticker cache ---

// TickerCache is a thread-safe company-name-to-symbol table. It lives for the
// whole process, grows monotonically, and is never evicted: a successful live
// lookup is memoized forever. Lookup matches any stored key as a
// case-insensitive substring of the queried name, so "Apple Inc." hits the
// "apple" entry.
type TickerCache struct {
	mu      sync.RWMutex
	symbols map[string]string // lowercase name fragment -> symbol
}

// NewTickerCache creates an empty ticker cache.
func NewTickerCache() *TickerCache {
	return &TickerCache{symbols: make(map[string]string)}
}

// SeededTickerCache creates a ticker cache pre-populated with well-known
// US-listed companies.
func SeededTickerCache() *TickerCache {
	c := NewTickerCache()
	for name, symbol := range wellKnownTickers {
		c.symbols[name] = symbol
	}
	return c
}

// Lookup returns the symbol for the first cached key contained in name.
func (c *TickerCache) Lookup(name string) (string, bool) {
	lower := strings.ToLower(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, symbol := range c.symbols {
		if strings.Contains(lower, key) {
			return symbol, true
		}
	}
	return "", false
}

// Store memoizes a resolved name-to-symbol mapping.
func (c *TickerCache) Store(name, symbol string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || symbol == "" {
		return
	}
	c.mu.Lock()
	c.symbols[key] = symbol
	c.mu.Unlock()
}

// Len returns the number of cached mappings.
func (c *TickerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// wellKnownTickers seeds the cache so common queries never hit the
// rate-limited search endpoint.
var wellKnownTickers = map[string]string{
	"apple":             "AAPL",
	"microsoft":         "MSFT",
	"google":            "GOOGL",
	"alphabet":          "GOOGL",
	"amazon":            "AMZN",
	"tesla":             "TSLA",
	"facebook":          "META",
	"meta":              "META",
	"netflix":           "NFLX",
	"nvidia":            "NVDA",
	"intel":             "INTC",
	"amd":               "AMD",
	"ibm":               "IBM",
	"oracle":            "ORCL",
	"salesforce":        "CRM",
	"adobe":             "ADBE",
	"walmart":           "WMT",
	"target":            "TGT",
	"coca cola":         "KO",
	"pepsi":             "PEP",
	"pepsico":           "PEP",
	"mcdonalds":         "MCD",
	"starbucks":         "SBUX",
	"nike":              "NKE",
	"disney":            "DIS",
	"boeing":            "BA",
	"ford":              "F",
	"general motors":    "GM",
	"exxon":             "XOM",
	"chevron":           "CVX",
	"jpmorgan":          "JPM",
	"bank of america":   "BAC",
	"goldman sachs":     "GS",
	"visa":              "V",
	"mastercard":        "MA",
	"paypal":            "PYPL",
	"johnson & johnson": "JNJ",
	"pfizer":            "PFE",
	"merck":             "MRK",
	"verizon":           "VZ",
	"at&t":              "T",
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
