// Package models defines the shared domain types passed between the data
// sources, the analysis stages, and the CLI output layer.
package models

import "time"

// TimeRange selects how much price history an analysis covers.
type TimeRange string

const (
	Range1Week  TimeRange = "1wk"
	Range1Month TimeRange = "1mo"
	Range3Month TimeRange = "3mo"

	// DefaultRange is used when no range is given or the input is not
	// recognized. Competitor ranking only runs at the default range.
	DefaultRange = Range3Month
)

// ParseTimeRange maps user input to a TimeRange, falling back to
// DefaultRange for anything unrecognized.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case Range1Week, Range1Month, Range3Month:
		return TimeRange(s)
	default:
		return DefaultRange
	}
}

// Days returns the number of calendar days the range spans.
func (r TimeRange) Days() int {
	switch r {
	case Range1Week:
		return 7
	case Range1Month:
		return 30
	default:
		return 90
	}
}

// PriceSeries is a daily close-price series. Dates and Closes are parallel
// slices ordered oldest first; dates use the YYYY-MM-DD layout.
type PriceSeries struct {
	Dates  []string  `json:"dates"`
	Closes []float64 `json:"closes"`
}

func (p PriceSeries) Len() int { return len(p.Closes) }

func (p PriceSeries) IsEmpty() bool { return len(p.Closes) == 0 }

// Latest returns the most recent close, or 0 for an empty series.
func (p PriceSeries) Latest() float64 {
	if len(p.Closes) == 0 {
		return 0
	}
	return p.Closes[len(p.Closes)-1]
}

// CompetitorCandidate is a company name proposed for ranking, tagged with
// the sector it was suggested under.
type CompetitorCandidate struct {
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// SectorCompetitors groups suggested competitor names by sector.
type SectorCompetitors struct {
	Sector    string   `json:"sector"`
	Companies []string `json:"companies"`
}

// CompetitorProfile is a fully resolved competitor with market data attached.
type CompetitorProfile struct {
	Name        string      `json:"name"`
	Ticker      string      `json:"ticker"`
	MarketCap   int64       `json:"market_cap"`
	Series      PriceSeries `json:"series"`
	LatestPrice float64     `json:"latest_price"`
}

// SentimentLabel classifies an article or an overall news picture.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// NewsArticle is a normalized news item from any provider. PublishedAt is
// RFC 3339 so merged feeds sort with a plain string comparison.
type NewsArticle struct {
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	PublishedAt    string         `json:"published_at"`
	Source         string         `json:"source"`
	Description    string         `json:"description,omitempty"`
	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
}

// SentimentSummary aggregates article-level sentiment into counts and an
// overall label.
type SentimentSummary struct {
	Positive     int            `json:"positive"`
	Neutral      int            `json:"neutral"`
	Negative     int            `json:"negative"`
	Total        int            `json:"total"`
	AverageScore float64        `json:"average_score"`
	OverallLabel SentimentLabel `json:"overall_label"`
}

// CompanyReport is the full analysis result for one company. Failed runs
// still produce a report, with Success false and Error set.
type CompanyReport struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Company     string    `json:"company"`
	Description string    `json:"description,omitempty"`
	Ticker      string    `json:"ticker"`
	Range       TimeRange `json:"range"`

	Series         PriceSeries         `json:"series"`
	Sectors        []SectorCompetitors `json:"sectors,omitempty"`
	TopCompetitors []CompetitorProfile `json:"top_competitors,omitempty"`
	Articles       []NewsArticle       `json:"articles,omitempty"`
	Sentiment      SentimentSummary    `json:"sentiment"`

	GeneratedAt time.Time `json:"generated_at"`
}
