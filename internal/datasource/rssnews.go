package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/quantfold/marketlens/pkg/models"
)

// RSSNews fetches per-ticker headlines from the Yahoo Finance RSS feed.
// It is a keyless last-resort source used when both JSON news providers
// come back empty.
type RSSNews struct {
	feedURL string // format string taking one ticker
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// RSSNewsOption configures the RSS source.
type RSSNewsOption func(*RSSNews)

// WithRSSFeedURL overrides the feed URL template (used in tests).
func WithRSSFeedURL(u string) RSSNewsOption {
	return func(r *RSSNews) { r.feedURL = u }
}

// NewRSSNews creates a new RSS headline source.
func NewRSSNews(opts ...RSSNewsOption) *RSSNews {
	r := &RSSNews{
		feedURL: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
		limiter: NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the data source name.
func (r *RSSNews) Name() string { return "Yahoo RSS" }

// TickerHeadlines returns recent headlines for a symbol. Articles come back
// unscored with HTML-stripped summaries.
func (r *RSSNews) TickerHeadlines(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := r.parser.ParseURLWithContext(fmt.Sprintf(r.feedURL, symbol), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:       item.Title,
			URL:         item.Link,
			Source:      "Yahoo Finance",
			Description: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
