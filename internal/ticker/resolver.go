// Package ticker resolves company names to market ticker symbols.
package ticker

import (
	"context"
	"log"
	"strings"

	"github.com/quantfold/marketlens/internal/datasource"
)

// DefaultSymbol is returned for a company name with no usable tokens.
const DefaultSymbol = "UNKN"

// Searcher is the live symbol-search collaborator.
type Searcher interface {
	SearchTicker(ctx context.Context, name string) (string, error)
}

// Resolver resolves a company name to a ticker symbol. Lookup order:
// cache substring hit, then live search (memoized on success), then the
// heuristic guess. Resolution never fails: any live-lookup error of any
// kind falls through to the heuristic. Failed lookups are not cached, so
// the same unresolved name re-queries the search service every time.
type Resolver struct {
	cache  *datasource.TickerCache
	search Searcher
}

// NewResolver creates a resolver around an injected cache. The cache is
// created once at process start and shared; the resolver never clears it.
func NewResolver(cache *datasource.TickerCache, search Searcher) *Resolver {
	return &Resolver{cache: cache, search: search}
}

// Resolve returns the ticker symbol for a company name.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	if symbol, ok := r.cache.Lookup(name); ok {
		return symbol
	}

	if r.search != nil {
		symbol, err := r.search.SearchTicker(ctx, name)
		if err == nil && symbol != "" {
			r.cache.Store(name, symbol)
			return symbol
		}
		if err != nil {
			log.Printf("ticker: search %q failed, falling back to guess: %v", name, err)
		}
	}

	return GuessTicker(name)
}

// GuessTicker is the pure heuristic fallback: the first whitespace-delimited
// token of the name, upper-cased, or DefaultSymbol for an empty name.
func GuessTicker(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return DefaultSymbol
	}
	return strings.ToUpper(fields[0])
}
