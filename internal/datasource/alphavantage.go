package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/quantfold/marketlens/pkg/models"
)

// AlphaVantage implements ticker symbol search and the NEWS_SENTIMENT feed.
// An empty API key is a valid configuration state: every call then returns
// ErrProviderDown and callers fall through to their fallbacks.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	limiter *RateLimiter
}

// AlphaVantageOption configures the Alpha Vantage source.
type AlphaVantageOption func(*AlphaVantage)

// WithAlphaVantageBaseURL overrides the API endpoint (used in tests).
func WithAlphaVantageBaseURL(u string) AlphaVantageOption {
	return func(a *AlphaVantage) { a.baseURL = u }
}

// NewAlphaVantage creates a new Alpha Vantage data source.
func NewAlphaVantage(apiKey string, opts ...AlphaVantageOption) *AlphaVantage {
	a := &AlphaVantage{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co/query",
		limiter: NewRateLimiter(5, time.Minute), // free tier: 5 req/min
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the data source name.
func (a *AlphaVantage) Name() string { return "Alpha Vantage" }

// --- Alpha Vantage API types ---

type avSearchResponse struct {
	BestMatches  []avMatch `json:"bestMatches"`
	Note         string    `json:"Note"`
	ErrorMessage string    `json:"Error Message"`
}

type avMatch struct {
	Symbol string `json:"1. symbol"`
	Name   string `json:"2. name"`
	Region string `json:"4. region"`
}

type avNewsResponse struct {
	Feed         []avNewsItem `json:"feed"`
	Note         string       `json:"Note"`
	ErrorMessage string       `json:"Error Message"`
}

type avNewsItem struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	TimePublished string `json:"time_published"` // "20250830T143000"
	Source        string `json:"source"`
	Summary       string `json:"summary"`
	OverallScore  string `json:"overall_sentiment_score"`
}

// --- Public methods ---

// SearchTicker resolves a company name to the first US-region symbol match.
func (a *AlphaVantage) SearchTicker(ctx context.Context, name string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: alpha vantage key not configured", ErrProviderDown)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("function", "SYMBOL_SEARCH")
	q.Set("keywords", name)
	q.Set("apikey", a.apiKey)

	var resp avSearchResponse
	if err := a.getJSON(ctx, q, &resp); err != nil {
		return "", fmt.Errorf("alpha vantage search %q: %w", name, err)
	}

	if resp.Note != "" {
		return "", fmt.Errorf("%w: %s", ErrRateLimited, resp.Note)
	}
	if resp.ErrorMessage != "" {
		return "", fmt.Errorf("%w: %s", ErrProviderDown, resp.ErrorMessage)
	}

	for _, match := range resp.BestMatches {
		if match.Region == "United States" && match.Symbol != "" {
			return match.Symbol, nil
		}
	}
	return "", fmt.Errorf("%w: no US match for %q", ErrNotFound, name)
}

// TickerNews returns the NEWS_SENTIMENT feed for a symbol. Each article
// carries the provider's precomputed sentiment score; an unparsable score
// becomes 0 so the aggregator re-scores it. Labels are left to the caller.
func (a *AlphaVantage) TickerNews(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("%w: alpha vantage key not configured", ErrProviderDown)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", symbol)
	q.Set("limit", "10")
	q.Set("apikey", a.apiKey)

	var resp avNewsResponse
	if err := a.getJSON(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("alpha vantage news %s: %w", symbol, err)
	}

	if resp.Note != "" {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, resp.Note)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderDown, resp.ErrorMessage)
	}

	articles := make([]models.NewsArticle, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		score, err := strconv.ParseFloat(item.OverallScore, 64)
		if err != nil {
			score = 0
		}
		articles = append(articles, models.NewsArticle{
			Title:          item.Title,
			URL:            item.URL,
			PublishedAt:    normalizeAVTime(item.TimePublished),
			Source:         item.Source,
			Description:    item.Summary,
			SentimentScore: score,
		})
	}
	return articles, nil
}

// getJSON issues the request and decodes into out.
func (a *AlphaVantage) getJSON(ctx context.Context, q url.Values, out any) error {
	body, _, err := doGet(ctx, a.baseURL+"?"+q.Encode(), map[string]string{
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

// normalizeAVTime converts Alpha Vantage's "20250830T143000" timestamps to
// RFC 3339 so merged article lists sort with one string comparison. Unparsable
// values pass through unchanged.
func normalizeAVTime(s string) string {
	t, err := time.Parse("20060102T150405", s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}
