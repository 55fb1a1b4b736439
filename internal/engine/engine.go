// Package engine orchestrates the analysis pipeline: resolve the ticker,
// fetch or synthesize price history, describe the company, rank competitors,
// and aggregate news sentiment. Each stage is isolated so a failing provider
// degrades the report instead of aborting it.
package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/quantfold/marketlens/internal/competitors"
	"github.com/quantfold/marketlens/internal/news"
	"github.com/quantfold/marketlens/internal/synth"
	"github.com/quantfold/marketlens/pkg/models"
)

// Resolver maps a company name to a ticker symbol. It never fails; the
// worst case is a heuristic guess.
type Resolver interface {
	Resolve(ctx context.Context, company string) string
}

// PriceHistory fetches a daily close series for a symbol.
type PriceHistory interface {
	History(ctx context.Context, symbol string, rng models.TimeRange) (models.PriceSeries, error)
}

// Summarizer produces a short company description.
type Summarizer interface {
	Summarize(ctx context.Context, company string) (string, error)
}

// CompetitorSource suggests sector-grouped competitor names.
type CompetitorSource interface {
	Suggest(ctx context.Context, company string) []models.SectorCompetitors
}

// CompetitorRanker orders competitor candidates by market cap.
type CompetitorRanker interface {
	Rank(ctx context.Context, candidates []models.CompetitorCandidate) []models.CompetitorProfile
}

// NewsSource gathers scored news for a company.
type NewsSource interface {
	CompanyNews(ctx context.Context, company, ticker string, limit int) []models.NewsArticle
}

// Engine runs the full analysis. Any dependency except the resolver and the
// synthesizer may be nil; nil stages are skipped.
type Engine struct {
	resolver    Resolver
	history     PriceHistory
	summarizer  Summarizer
	discovery   CompetitorSource
	ranker      CompetitorRanker
	news        NewsSource
	synthesizer *synth.Synthesizer
	newsLimit   int
	now         func() time.Time
}

// New creates an Engine over the given stages.
func New(resolver Resolver, history PriceHistory, summarizer Summarizer, discovery CompetitorSource, ranker CompetitorRanker, newsSource NewsSource, synthesizer *synth.Synthesizer, newsLimit int) *Engine {
	if newsLimit <= 0 {
		newsLimit = news.DefaultLimit
	}
	return &Engine{
		resolver:    resolver,
		history:     history,
		summarizer:  summarizer,
		discovery:   discovery,
		ranker:      ranker,
		news:        newsSource,
		synthesizer: synthesizer,
		newsLimit:   newsLimit,
		now:         time.Now,
	}
}

// Analyze produces a CompanyReport for the named company. It always returns
// a well-formed report: a blank name yields a failure report, a panic in any
// stage is recovered into one, and individual stage failures leave their
// section empty while the rest completes. Competitor ranking only runs at
// the default range.
func (e *Engine) Analyze(ctx context.Context, company string, rng models.TimeRange) (report *models.CompanyReport) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: analysis of %q panicked: %v", company, r)
			report = &models.CompanyReport{
				Success:     false,
				Error:       "internal error during analysis",
				Company:     company,
				Range:       rng,
				GeneratedAt: e.now(),
			}
		}
	}()

	company = strings.TrimSpace(company)
	if company == "" {
		return &models.CompanyReport{
			Success:     false,
			Error:       "no company name provided",
			Range:       rng,
			GeneratedAt: e.now(),
		}
	}

	report = &models.CompanyReport{
		Company: company,
		Range:   rng,
	}

	if e.summarizer != nil {
		desc, err := e.summarizer.Summarize(ctx, company)
		if err != nil {
			log.Printf("engine: description for %q unavailable: %v", company, err)
		} else {
			report.Description = desc
		}
	}

	report.Ticker = e.resolver.Resolve(ctx, company)

	report.Series = e.priceSeries(ctx, report.Ticker, rng)

	if rng == models.DefaultRange && e.discovery != nil && e.ranker != nil {
		report.Sectors = e.discovery.Suggest(ctx, company)
		report.TopCompetitors = e.ranker.Rank(ctx, competitors.Flatten(report.Sectors))
	}

	if e.news != nil {
		report.Articles = e.news.CompanyNews(ctx, company, report.Ticker, e.newsLimit)
		report.Sentiment = news.Summary(report.Articles)
	}

	report.Success = true
	report.GeneratedAt = e.now()
	return report
}

// priceSeries fetches live history and falls back to a synthetic series so
// the report always carries a correctly sized price chart.
func (e *Engine) priceSeries(ctx context.Context, symbol string, rng models.TimeRange) models.PriceSeries {
	if e.history != nil {
		series, err := e.history.History(ctx, symbol, rng)
		if err == nil && !series.IsEmpty() {
			return series
		}
		if err != nil {
			log.Printf("engine: history for %s unavailable, synthesizing: %v", symbol, err)
		}
	}
	return e.synthesizer.Series(rng)
}
