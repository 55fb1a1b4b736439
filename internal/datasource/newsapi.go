package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/quantfold/marketlens/pkg/models"
)

// NewsAPI implements article search against the NewsAPI "everything" endpoint.
// Articles come back unscored; the news aggregator owns sentiment.
type NewsAPI struct {
	apiKey  string
	baseURL string
	limiter *RateLimiter
}

// NewsAPIOption configures the NewsAPI source.
type NewsAPIOption func(*NewsAPI)

// WithNewsAPIBaseURL overrides the API endpoint (used in tests).
func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(n *NewsAPI) { n.baseURL = u }
}

// NewNewsAPI creates a new NewsAPI data source.
func NewNewsAPI(apiKey string, opts ...NewsAPIOption) *NewsAPI {
	n := &NewsAPI{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/everything",
		limiter: NewRateLimiter(2, time.Second),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

// --- NewsAPI types ---

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Search returns up to 10 relevancy-sorted English articles mentioning the
// exact query phrase within [from, to].
func (n *NewsAPI) Search(ctx context.Context, query string, from, to time.Time) ([]models.NewsArticle, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("%w: newsapi key not configured", ErrProviderDown)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%q", query))
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", "10")
	q.Set("apiKey", n.apiKey)

	body, _, err := doGet(ctx, n.baseURL+"?"+q.Encode(), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi search %q: %w", query, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: newsapi: %v", ErrMalformed, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi status %s: %s", ErrProviderDown, resp.Status, resp.Message)
	}

	articles := make([]models.NewsArticle, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		if item.Title == "" {
			continue
		}
		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Source:      item.Source.Name,
			Description: item.Description,
		})
	}
	return articles, nil
}
