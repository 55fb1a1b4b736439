package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantfold/marketlens/pkg/models"
)

type fakePrimary struct {
	articles []models.NewsArticle
	err      error
	calls    int
}

func (f *fakePrimary) Search(ctx context.Context, query string, from, to time.Time) ([]models.NewsArticle, error) {
	f.calls++
	return f.articles, f.err
}

type fakeFeed struct {
	articles []models.NewsArticle
	err      error
	calls    int
}

func (f *fakeFeed) TickerNews(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	f.calls++
	return f.articles, f.err
}

type fakeHeadlines struct {
	articles []models.NewsArticle
	calls    int
}

func (f *fakeHeadlines) TickerHeadlines(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	f.calls++
	return f.articles, nil
}

func art(title, published string) models.NewsArticle {
	return models.NewsArticle{Title: title, PublishedAt: published, Source: "test"}
}

func TestCompanyNewsScoresPrimary(t *testing.T) {
	primary := &fakePrimary{articles: []models.NewsArticle{
		art("Company reports strong record growth", "2025-08-30T10:00:00Z"),
		art("Shares plunge after weak guidance", "2025-08-29T10:00:00Z"),
	}}
	a := NewAggregator(primary, nil, nil)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if got[0].SentimentLabel != models.SentimentPositive {
		t.Errorf("first article label = %s, want positive (score %v)", got[0].SentimentLabel, got[0].SentimentScore)
	}
	if got[1].SentimentLabel != models.SentimentNegative {
		t.Errorf("second article label = %s, want negative (score %v)", got[1].SentimentLabel, got[1].SentimentScore)
	}
}

func TestCompanyNewsRescoresNeutralProviderScores(t *testing.T) {
	feed := &fakeFeed{articles: []models.NewsArticle{
		{Title: "Profits surge on strong beat", PublishedAt: "2025-08-30T10:00:00Z", SentimentScore: 0.01},
		{Title: "Company opens new office", PublishedAt: "2025-08-29T10:00:00Z", SentimentScore: 0.42},
	}}
	a := NewAggregator(nil, feed, nil)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if got[0].SentimentScore == 0.01 {
		t.Error("neutral provider score was not re-scored from the headline")
	}
	if got[0].SentimentLabel != models.SentimentPositive {
		t.Errorf("re-scored label = %s, want positive", got[0].SentimentLabel)
	}
	if got[1].SentimentScore != 0.42 {
		t.Errorf("confident provider score was overwritten: %v", got[1].SentimentScore)
	}
}

func TestCompanyNewsSkipsTickerFeedsWithoutTicker(t *testing.T) {
	feed := &fakeFeed{articles: []models.NewsArticle{art("anything", "2025-08-30T10:00:00Z")}}
	heads := &fakeHeadlines{articles: []models.NewsArticle{art("headline", "2025-08-30T09:00:00Z")}}
	a := NewAggregator(&fakePrimary{}, feed, heads)

	got := a.CompanyNews(context.Background(), "Acme", "", 10)
	if feed.calls != 0 || heads.calls != 0 {
		t.Errorf("ticker feeds consulted without a ticker: feed=%d heads=%d", feed.calls, heads.calls)
	}
	if len(got) != 0 {
		t.Errorf("expected no articles, got %d", len(got))
	}
}

func TestCompanyNewsHeadlinesOnlyWhenEmpty(t *testing.T) {
	primary := &fakePrimary{articles: []models.NewsArticle{art("real story", "2025-08-30T10:00:00Z")}}
	heads := &fakeHeadlines{articles: []models.NewsArticle{art("rss story", "2025-08-30T09:00:00Z")}}
	a := NewAggregator(primary, nil, heads)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if heads.calls != 0 {
		t.Error("headline feed consulted despite primary results")
	}
	if len(got) != 1 || got[0].Title != "real story" {
		t.Fatalf("unexpected articles: %v", got)
	}

	primary.articles = nil
	got = a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if heads.calls != 1 {
		t.Errorf("headline feed calls = %d, want 1 after empty primary", heads.calls)
	}
	if len(got) != 1 || got[0].Title != "rss story" {
		t.Fatalf("unexpected fallback articles: %v", got)
	}
}

func TestCompanyNewsDedupesAndSorts(t *testing.T) {
	primary := &fakePrimary{articles: []models.NewsArticle{
		art("Big Announcement", "2025-08-28T10:00:00Z"),
	}}
	feed := &fakeFeed{articles: []models.NewsArticle{
		{Title: "big announcement", PublishedAt: "2025-08-30T10:00:00Z", SentimentScore: 0.5},
		{Title: "Other update", PublishedAt: "2025-08-29T10:00:00Z", SentimentScore: 0.5},
	}}
	a := NewAggregator(primary, feed, nil)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2 after dedup", len(got))
	}
	// The primary copy arrived first and wins, despite being older.
	if got[0].Title != "Other update" {
		t.Errorf("order wrong: first = %q", got[0].Title)
	}
	if got[1].Title != "Big Announcement" {
		t.Errorf("dedup kept wrong copy: %q", got[1].Title)
	}
}

func TestCompanyNewsLimit(t *testing.T) {
	var articles []models.NewsArticle
	for i := 0; i < 15; i++ {
		articles = append(articles, art(
			"story "+string(rune('a'+i)),
			time.Date(2025, 8, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		))
	}
	a := NewAggregator(&fakePrimary{articles: articles}, nil, nil)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 0)
	if len(got) != DefaultLimit {
		t.Fatalf("got %d articles, want default limit %d", len(got), DefaultLimit)
	}
	if got[0].PublishedAt < got[len(got)-1].PublishedAt {
		t.Error("articles not sorted newest first")
	}
}

func TestCompanyNewsAbsorbsProviderErrors(t *testing.T) {
	primary := &fakePrimary{err: errors.New("rate limited")}
	feed := &fakeFeed{articles: []models.NewsArticle{
		{Title: "still works", PublishedAt: "2025-08-30T10:00:00Z", SentimentScore: 0.3},
	}}
	a := NewAggregator(primary, feed, nil)

	got := a.CompanyNews(context.Background(), "Acme", "ACME", 10)
	if len(got) != 1 || got[0].Title != "still works" {
		t.Fatalf("provider error should be absorbed, got %v", got)
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(nil); got != (models.SentimentSummary{}) {
		t.Errorf("empty summary = %+v, want zero value", got)
	}

	articles := []models.NewsArticle{
		{Title: "a", SentimentScore: 0.6},
		{Title: "b", SentimentScore: 0.2},
		{Title: "c", SentimentScore: -0.5},
		{Title: "d", SentimentScore: 0.0},
	}
	got := Summary(articles)
	if got.Positive != 2 || got.Negative != 1 || got.Neutral != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", got.Positive, got.Neutral, got.Negative)
	}
	if got.Total != 4 {
		t.Errorf("total = %d, want 4", got.Total)
	}
	wantAvg := (0.6 + 0.2 - 0.5 + 0.0) / 4
	if diff := got.AverageScore - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("average = %v, want %v", got.AverageScore, wantAvg)
	}
	if got.OverallLabel != models.SentimentPositive {
		t.Errorf("overall = %s, want positive", got.OverallLabel)
	}
}
