package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/quantfold/marketlens/internal/datasource"
	"github.com/quantfold/marketlens/internal/synth"
	"github.com/quantfold/marketlens/internal/ticker"
	"github.com/quantfold/marketlens/pkg/models"
)

type fakeResolver struct {
	symbol string
	calls  int
}

func (f *fakeResolver) Resolve(ctx context.Context, company string) string {
	f.calls++
	return f.symbol
}

type fakeHistory struct {
	series models.PriceSeries
	err    error
}

func (f *fakeHistory) History(ctx context.Context, symbol string, rng models.TimeRange) (models.PriceSeries, error) {
	return f.series, f.err
}

type fakeSummarizer struct {
	text string
	err  error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, company string) (string, error) {
	return f.text, f.err
}

type fakeDiscovery struct {
	calls int
}

func (f *fakeDiscovery) Suggest(ctx context.Context, company string) []models.SectorCompetitors {
	f.calls++
	return []models.SectorCompetitors{{Sector: "Technology", Companies: []string{"Rival"}}}
}

type fakeRanker struct {
	calls int
	got   []models.CompetitorCandidate
}

func (f *fakeRanker) Rank(ctx context.Context, candidates []models.CompetitorCandidate) []models.CompetitorProfile {
	f.calls++
	f.got = candidates
	return []models.CompetitorProfile{{Name: "Rival", Ticker: "RVL", MarketCap: 42}}
}

type fakeNews struct {
	articles []models.NewsArticle
}

func (f *fakeNews) CompanyNews(ctx context.Context, company, ticker string, limit int) []models.NewsArticle {
	return f.articles
}

type panicHistory struct{}

func (panicHistory) History(ctx context.Context, symbol string, rng models.TimeRange) (models.PriceSeries, error) {
	panic("provider bug")
}

func testSynth() *synth.Synthesizer {
	return synth.NewWithRand(rand.New(rand.NewSource(7)), time.Now)
}

func TestAnalyzeEmptyName(t *testing.T) {
	res := &fakeResolver{symbol: "AAPL"}
	e := New(res, nil, nil, nil, nil, nil, testSynth(), 0)

	for _, name := range []string{"", "   ", "\t\n"} {
		report := e.Analyze(context.Background(), name, models.DefaultRange)
		if report.Success {
			t.Errorf("Analyze(%q) succeeded, want failure", name)
		}
		if report.Error != "no company name provided" {
			t.Errorf("Analyze(%q) error = %q", name, report.Error)
		}
		if report.GeneratedAt.IsZero() {
			t.Error("failure report missing timestamp")
		}
		if !report.Series.IsEmpty() || report.TopCompetitors != nil || report.Articles != nil {
			t.Errorf("failure report carries data: %+v", report)
		}
	}
	if res.calls != 0 {
		t.Errorf("resolver called %d times before name validation", res.calls)
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	res := &fakeResolver{symbol: "AAPL"}
	hist := &fakeHistory{series: models.PriceSeries{
		Dates:  []string{"2025-08-29", "2025-08-30"},
		Closes: []float64{230.10, 232.55},
	}}
	disc := &fakeDiscovery{}
	rank := &fakeRanker{}
	nws := &fakeNews{articles: []models.NewsArticle{
		{Title: "up", SentimentScore: 0.3},
		{Title: "down", SentimentScore: -0.3},
	}}
	e := New(res, hist, &fakeSummarizer{text: "Consumer electronics maker."}, disc, rank, nws, testSynth(), 10)

	report := e.Analyze(context.Background(), "Apple", models.DefaultRange)
	if !report.Success {
		t.Fatalf("Analyze failed: %s", report.Error)
	}
	if report.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL", report.Ticker)
	}
	if report.Description != "Consumer electronics maker." {
		t.Errorf("description = %q", report.Description)
	}
	if report.Series.Latest() != 232.55 {
		t.Errorf("series latest = %v, want live data", report.Series.Latest())
	}
	if len(report.TopCompetitors) != 1 || report.TopCompetitors[0].Ticker != "RVL" {
		t.Errorf("competitors = %v", report.TopCompetitors)
	}
	if len(rank.got) != 1 || rank.got[0].Name != "Rival" || rank.got[0].Sector != "Technology" {
		t.Errorf("ranker received %v", rank.got)
	}
	if report.Sentiment.Total != len(report.Articles) {
		t.Errorf("sentiment total %d != article count %d", report.Sentiment.Total, len(report.Articles))
	}
	if report.Sentiment.Positive != 1 || report.Sentiment.Negative != 1 {
		t.Errorf("sentiment counts = %+v", report.Sentiment)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("report missing timestamp")
	}
}

func TestAnalyzeAppleOneMonth(t *testing.T) {
	resolver := ticker.NewResolver(datasource.SeededTickerCache(), nil)
	hist := &fakeHistory{err: errors.New("upstream down")}
	e := New(resolver, hist, nil, nil, nil, &fakeNews{}, testSynth(), 0)

	report := e.Analyze(context.Background(), "Apple", models.Range1Month)
	if !report.Success {
		t.Fatalf("Analyze failed: %s", report.Error)
	}
	if report.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL from the seeded cache", report.Ticker)
	}
	if report.Series.Len() != 30 {
		t.Errorf("series length = %d, want 30", report.Series.Len())
	}
	if report.Sentiment.Total != len(report.Articles) {
		t.Errorf("sentiment total %d != article count %d", report.Sentiment.Total, len(report.Articles))
	}
}

func TestAnalyzeSynthesizesOnHistoryFailure(t *testing.T) {
	hist := &fakeHistory{err: errors.New("upstream down")}
	e := New(&fakeResolver{symbol: "AAPL"}, hist, nil, nil, nil, nil, testSynth(), 0)

	report := e.Analyze(context.Background(), "Apple", models.Range1Month)
	if !report.Success {
		t.Fatalf("Analyze failed: %s", report.Error)
	}
	if report.Series.Len() != 30 {
		t.Errorf("synthetic series length = %d, want 30 for 1mo", report.Series.Len())
	}
}

func TestAnalyzeSkipsCompetitorsOffDefaultRange(t *testing.T) {
	disc := &fakeDiscovery{}
	rank := &fakeRanker{}
	e := New(&fakeResolver{symbol: "AAPL"}, nil, nil, disc, rank, nil, testSynth(), 0)

	report := e.Analyze(context.Background(), "Apple", models.Range1Week)
	if !report.Success {
		t.Fatalf("Analyze failed: %s", report.Error)
	}
	if disc.calls != 0 || rank.calls != 0 {
		t.Errorf("competitor stages ran off the default range: disc=%d rank=%d", disc.calls, rank.calls)
	}
	if report.TopCompetitors != nil {
		t.Errorf("unexpected competitors: %v", report.TopCompetitors)
	}
}

func TestAnalyzeDescriptionFailureDegrades(t *testing.T) {
	e := New(&fakeResolver{symbol: "AAPL"}, nil, &fakeSummarizer{err: errors.New("no page")}, nil, nil, nil, testSynth(), 0)

	report := e.Analyze(context.Background(), "Apple", models.DefaultRange)
	if !report.Success {
		t.Fatalf("description failure aborted analysis: %s", report.Error)
	}
	if report.Description != "" {
		t.Errorf("description = %q, want empty", report.Description)
	}
}

func TestAnalyzeRecoversPanic(t *testing.T) {
	e := New(&fakeResolver{symbol: "AAPL"}, panicHistory{}, nil, nil, nil, nil, testSynth(), 0)

	report := e.Analyze(context.Background(), "Apple", models.DefaultRange)
	if report == nil {
		t.Fatal("panic produced a nil report")
	}
	if report.Success {
		t.Error("panicked analysis reported success")
	}
	if report.Error != "internal error during analysis" {
		t.Errorf("error = %q", report.Error)
	}
	if report.Company != "Apple" {
		t.Errorf("company = %q, want Apple", report.Company)
	}
}
