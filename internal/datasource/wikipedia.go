package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// Wikipedia implements short company descriptions via the MediaWiki API:
// a search for the best-matching page, then a two-sentence plain-text intro.
type Wikipedia struct {
	baseURL string
	limiter *RateLimiter
}

// WikipediaOption configures the Wikipedia source.
type WikipediaOption func(*Wikipedia)

// WithWikipediaBaseURL overrides the API endpoint (used in tests).
func WithWikipediaBaseURL(u string) WikipediaOption {
	return func(w *Wikipedia) { w.baseURL = u }
}

// NewWikipedia creates a new Wikipedia summary source.
func NewWikipedia(opts ...WikipediaOption) *Wikipedia {
	w := &Wikipedia{
		baseURL: "https://en.wikipedia.org/w/api.php",
		limiter: NewRateLimiter(5, time.Second),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the data source name.
func (w *Wikipedia) Name() string { return "Wikipedia" }

// --- MediaWiki API types ---

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Summarize returns a short plain-text description of the best-matching page
// for the company name. ErrNotFound when no page matches.
func (w *Wikipedia) Summarize(ctx context.Context, name string) (string, error) {
	title, err := w.search(ctx, name)
	if err != nil {
		return "", err
	}
	return w.extract(ctx, title)
}

func (w *Wikipedia) search(ctx context.Context, name string) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", name)
	q.Set("srlimit", "1")
	q.Set("format", "json")

	var resp wikiSearchResponse
	if err := w.getJSON(ctx, q, &resp); err != nil {
		return "", fmt.Errorf("wikipedia search %q: %w", name, err)
	}
	if len(resp.Query.Search) == 0 {
		return "", fmt.Errorf("%w: no wikipedia page for %q", ErrNotFound, name)
	}
	return resp.Query.Search[0].Title, nil
}

func (w *Wikipedia) extract(ctx context.Context, title string) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("exsentences", "2")
	q.Set("titles", title)
	q.Set("format", "json")

	var resp wikiExtractResponse
	if err := w.getJSON(ctx, q, &resp); err != nil {
		return "", fmt.Errorf("wikipedia extract %q: %w", title, err)
	}
	for _, page := range resp.Query.Pages {
		if s := strings.TrimSpace(page.Extract); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: empty extract for %q", ErrNotFound, title)
}

func (w *Wikipedia) getJSON(ctx context.Context, q url.Values, out any) error {
	body, _, err := doGet(ctx, w.baseURL+"?"+q.Encode(), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
