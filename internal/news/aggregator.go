// Package news merges company news from multiple providers into one scored,
// deduplicated, recency-ordered list. Provider failures are logged and
// absorbed; the aggregator always returns whatever it could gather.
package news

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/quantfold/marketlens/internal/sentiment"
	"github.com/quantfold/marketlens/pkg/models"
	"github.com/quantfold/marketlens/pkg/utils"
)

// DefaultLimit caps the merged article list when the caller passes no limit.
const DefaultLimit = 10

// PrimarySearcher searches news by company name over a date window.
type PrimarySearcher interface {
	Search(ctx context.Context, query string, from, to time.Time) ([]models.NewsArticle, error)
}

// TickerFeed fetches pre-scored news for a ticker symbol.
type TickerFeed interface {
	TickerNews(ctx context.Context, symbol string) ([]models.NewsArticle, error)
}

// HeadlineFeed fetches unscored headlines for a ticker symbol. It is the
// last resort when both scored providers come back empty.
type HeadlineFeed interface {
	TickerHeadlines(ctx context.Context, symbol string) ([]models.NewsArticle, error)
}

// Aggregator combines the providers. Any of them may be nil; a nil provider
// is simply skipped.
type Aggregator struct {
	primary   PrimarySearcher
	secondary TickerFeed
	headlines HeadlineFeed
	now       func() time.Time
}

// NewAggregator creates an Aggregator over the given providers.
func NewAggregator(primary PrimarySearcher, secondary TickerFeed, headlines HeadlineFeed) *Aggregator {
	return &Aggregator{
		primary:   primary,
		secondary: secondary,
		headlines: headlines,
		now:       time.Now,
	}
}

// CompanyNews gathers, scores, dedupes, and orders news for a company.
// Primary results are scored locally on title and description. Secondary
// results keep their provider score unless it sits inside the neutral band,
// in which case the headline is re-scored locally. The headline feed is
// consulted only when both scored providers produced nothing. Articles with
// the same title (case-insensitive) keep the first occurrence. The result is
// sorted newest first and truncated to limit.
func (a *Aggregator) CompanyNews(ctx context.Context, company, ticker string, limit int) []models.NewsArticle {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var merged []models.NewsArticle

	if a.primary != nil {
		from, to := utils.NewsWindow(a.now())
		articles, err := a.primary.Search(ctx, company, from, to)
		if err != nil {
			log.Printf("news: primary search for %q failed: %v", company, err)
		}
		for _, art := range articles {
			text := art.Title
			if art.Description != "" {
				text = art.Title + ". " + art.Description
			}
			art.SentimentScore = sentiment.Score(text)
			art.SentimentLabel = sentiment.Label(art.SentimentScore)
			merged = append(merged, art)
		}
	}

	if a.secondary != nil && ticker != "" {
		articles, err := a.secondary.TickerNews(ctx, ticker)
		if err != nil {
			log.Printf("news: ticker feed for %s failed: %v", ticker, err)
		}
		for _, art := range articles {
			if math.Abs(art.SentimentScore) < sentiment.Threshold {
				art.SentimentScore = sentiment.Score(art.Title)
			}
			art.SentimentLabel = sentiment.Label(art.SentimentScore)
			merged = append(merged, art)
		}
	}

	if len(merged) == 0 && a.headlines != nil && ticker != "" {
		articles, err := a.headlines.TickerHeadlines(ctx, ticker)
		if err != nil {
			log.Printf("news: headline feed for %s failed: %v", ticker, err)
		}
		for _, art := range articles {
			art.SentimentScore = sentiment.Score(art.Title)
			art.SentimentLabel = sentiment.Label(art.SentimentScore)
			merged = append(merged, art)
		}
	}

	merged = dedupe(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt > merged[j].PublishedAt
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Summary tallies article labels into counts, a mean score, and an overall
// label. An empty slice yields the zero summary.
func Summary(articles []models.NewsArticle) models.SentimentSummary {
	if len(articles) == 0 {
		return models.SentimentSummary{}
	}

	var sum models.SentimentSummary
	var total float64
	for _, art := range articles {
		switch sentiment.Label(art.SentimentScore) {
		case models.SentimentPositive:
			sum.Positive++
		case models.SentimentNegative:
			sum.Negative++
		default:
			sum.Neutral++
		}
		total += art.SentimentScore
	}
	sum.Total = len(articles)
	sum.AverageScore = total / float64(len(articles))
	sum.OverallLabel = sentiment.Label(sum.AverageScore)
	return sum
}

func dedupe(articles []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, art := range articles {
		key := strings.ToLower(art.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, art)
	}
	return out
}
