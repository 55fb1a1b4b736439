package ticker

import (
	"context"
	"errors"
	"testing"

	"github.com/quantfold/marketlens/internal/datasource"
)

// fakeSearcher counts calls and returns a scripted result.
type fakeSearcher struct {
	symbol string
	err    error
	calls  int
}

func (f *fakeSearcher) SearchTicker(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.symbol, f.err
}

func TestResolveCacheHitSkipsSearch(t *testing.T) {
	search := &fakeSearcher{symbol: "WRONG"}
	r := NewResolver(datasource.SeededTickerCache(), search)

	got := r.Resolve(context.Background(), "Apple Inc.")
	if got != "AAPL" {
		t.Fatalf("got %s, want AAPL from cache", got)
	}
	if search.calls != 0 {
		t.Fatalf("search called %d times, want 0 on cache hit", search.calls)
	}
}

func TestResolveLiveSearchMemoized(t *testing.T) {
	cache := datasource.NewTickerCache()
	search := &fakeSearcher{symbol: "SHOP"}
	r := NewResolver(cache, search)

	if got := r.Resolve(context.Background(), "Shopify"); got != "SHOP" {
		t.Fatalf("got %s, want SHOP", got)
	}
	if search.calls != 1 {
		t.Fatalf("search called %d times, want 1", search.calls)
	}

	// Second resolve hits the memoized entry.
	if got := r.Resolve(context.Background(), "Shopify"); got != "SHOP" {
		t.Fatalf("got %s, want SHOP on second resolve", got)
	}
	if search.calls != 1 {
		t.Fatalf("search called %d times after memoization, want 1", search.calls)
	}
}

func TestResolveFallsBackToGuess(t *testing.T) {
	search := &fakeSearcher{err: errors.New("rate limited")}
	r := NewResolver(datasource.NewTickerCache(), search)

	if got := r.Resolve(context.Background(), "Acme Rockets Corp"); got != "ACME" {
		t.Fatalf("got %s, want ACME heuristic", got)
	}
}

func TestResolveNoNegativeCaching(t *testing.T) {
	search := &fakeSearcher{err: errors.New("unavailable")}
	r := NewResolver(datasource.NewTickerCache(), search)

	r.Resolve(context.Background(), "Acme Rockets Corp")
	r.Resolve(context.Background(), "Acme Rockets Corp")

	// Failures must re-query every time.
	if search.calls != 2 {
		t.Fatalf("search called %d times, want 2 (no negative caching)", search.calls)
	}
}

func TestResolveNilSearcher(t *testing.T) {
	r := NewResolver(datasource.NewTickerCache(), nil)
	if got := r.Resolve(context.Background(), "Acme Rockets"); got != "ACME" {
		t.Fatalf("got %s, want ACME with nil searcher", got)
	}
}

func TestGuessTicker(t *testing.T) {
	cases := map[string]string{
		"Acme Rockets Corp": "ACME",
		"tesla":             "TESLA",
		"":                  DefaultSymbol,
		"   ":               DefaultSymbol,
	}
	for in, want := range cases {
		if got := GuessTicker(in); got != want {
			t.Errorf("GuessTicker(%q) = %s, want %s", in, got, want)
		}
	}
}
