package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/quantfold/marketlens/pkg/models"
	"github.com/quantfold/marketlens/pkg/utils"
)

// YFinance implements close-price history and market capitalization lookups
// against the public Yahoo Finance chart and quote APIs. It needs no API key.
type YFinance struct {
	baseURL string
	limiter *RateLimiter
}

// YFinanceOption configures the Yahoo Finance source.
type YFinanceOption func(*YFinance)

// WithYFinanceBaseURL overrides the API endpoint (used in tests).
func WithYFinanceBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = u }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: "https://query1.finance.yahoo.com",
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yfQuoteBlock `json:"quote"`
	} `json:"indicators"`
}

type yfQuoteBlock struct {
	Close []*float64 `json:"close"`
}

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"marketCap"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// History returns the daily close-price series for a symbol over the given
// range. Null holes in the chart payload are skipped; closes are rounded to
// two decimal places. A successful response with no usable rows is ErrEmpty.
func (y *YFinance) History(ctx context.Context, symbol string, rng models.TimeRange) (models.PriceSeries, error) {
	var series models.PriceSeries

	if err := y.limiter.Wait(ctx); err != nil {
		return series, err
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		y.baseURL, symbol, yfRange(rng))

	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return series, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return series, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return series, fmt.Errorf("%w: yfinance chart: %v", ErrMalformed, err)
	}

	if resp.Chart.Error != nil {
		return series, fmt.Errorf("%w: %s", ErrProviderDown, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return series, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, fmt.Errorf("%w: no quote block for %s", ErrEmpty, symbol)
	}

	closes := result.Indicators.Quote[0].Close
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series.Dates = append(series.Dates, time.Unix(ts, 0).UTC().Format(utils.DateLayout))
		series.Closes = append(series.Closes, utils.RoundPrice(*closes[i]))
	}

	if series.IsEmpty() {
		return series, fmt.Errorf("%w: no closes for %s", ErrEmpty, symbol)
	}
	return series, nil
}

// MarketCap returns the market capitalization for a symbol.
// A quote without a positive market cap is ErrNotFound.
func (y *YFinance) MarketCap(ctx context.Context, symbol string) (int64, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, symbol)
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return 0, fmt.Errorf("yfinance quote %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var resp yfQuoteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("%w: yfinance quote: %v", ErrMalformed, err)
	}

	if resp.QuoteResponse.Error != nil {
		return 0, fmt.Errorf("%w: %s", ErrProviderDown, resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	cap := int64(resp.QuoteResponse.Result[0].MarketCap)
	if cap <= 0 {
		return 0, fmt.Errorf("%w: no market cap for %s", ErrNotFound, symbol)
	}
	return cap, nil
}

// yfRange maps a TimeRange to the chart API's range parameter.
func yfRange(rng models.TimeRange) string {
	switch rng {
	case models.Range1Week:
		return "5d" // closest chart API window to one week
	case models.Range1Month:
		return "1mo"
	default:
		return "3mo"
	}
}
