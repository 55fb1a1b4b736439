// MarketLens — company analysis aggregation CLI
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantfold/marketlens/internal/competitors"
	"github.com/quantfold/marketlens/internal/config"
	"github.com/quantfold/marketlens/internal/datasource"
	"github.com/quantfold/marketlens/internal/engine"
	"github.com/quantfold/marketlens/internal/llm"
	"github.com/quantfold/marketlens/internal/news"
	"github.com/quantfold/marketlens/internal/synth"
	"github.com/quantfold/marketlens/internal/ticker"
	"github.com/quantfold/marketlens/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	// Optional .env for local development; a missing file is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "MarketLens — company analysis aggregation engine",
	Long: `MarketLens pulls a company's price history, top competitors, and news
sentiment into one report, degrading gracefully when individual data
providers are unavailable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(competitorsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildEngine wires the data sources into an analysis engine from the
// loaded config. Providers without keys are left nil; the engine and the
// aggregator skip them.
func buildEngine() *engine.Engine {
	cache := datasource.SeededTickerCache()
	yf := datasource.NewYFinance()
	syn := synth.New()

	var av *datasource.AlphaVantage
	var searcher ticker.Searcher
	var tickerFeed news.TickerFeed
	if cfg.Providers.AlphaVantageKey != "" {
		av = datasource.NewAlphaVantage(cfg.Providers.AlphaVantageKey)
		searcher = av
		tickerFeed = av
	}
	resolver := ticker.NewResolver(cache, searcher)

	var provider llm.Provider
	if cfg.Providers.GeminiKey != "" {
		p, err := llm.NewGeminiProvider(cfg.Providers.GeminiKey, llm.WithGeminiModel(cfg.Providers.GeminiModel))
		if err == nil {
			provider = p
		}
	}

	ranker := competitors.NewRanker(resolver, yf, syn, competitors.RankerConfig{
		TopK:             cfg.Analysis.TopK,
		MaxCandidates:    cfg.Analysis.MaxCandidates,
		Workers:          cfg.Analysis.Workers,
		CandidateTimeout: time.Duration(cfg.Analysis.CandidateTimeoutSec) * time.Second,
		FetchTimeout:     time.Duration(cfg.Analysis.FetchTimeoutSec) * time.Second,
	})

	var primary news.PrimarySearcher
	if cfg.Providers.NewsAPIKey != "" {
		primary = datasource.NewNewsAPI(cfg.Providers.NewsAPIKey)
	}
	aggregator := news.NewAggregator(primary, tickerFeed, datasource.NewRSSNews())

	return engine.New(
		resolver,
		yf,
		datasource.NewWikipedia(),
		competitors.NewDiscovery(provider),
		ranker,
		aggregator,
		syn,
		cfg.Analysis.NewsLimit,
	)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MarketLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [company]",
	Short: "Run the full analysis for a company",
	Long:  "Resolve the ticker, fetch price history, rank competitors, and score recent news for a company.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := strings.Join(args, " ")
		rangeStr, _ := cmd.Flags().GetString("range")
		rng := models.ParseTimeRange(rangeStr)

		fmt.Printf("🔍 Analyzing %s (%s)\n\n", company, rng)

		report := buildEngine().Analyze(cmd.Context(), company, rng)
		printReport(report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("range", string(models.DefaultRange), "price history range: 1wk, 1mo, 3mo")
}

// --- Competitors Command ---

var competitorsCmd = &cobra.Command{
	Use:   "competitors [company]",
	Short: "Show the top competitors for a company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := strings.Join(args, " ")
		report := buildEngine().Analyze(cmd.Context(), company, models.DefaultRange)
		if !report.Success {
			return fmt.Errorf("analysis failed: %s", report.Error)
		}

		fmt.Printf("🏁 Top competitors of %s\n\n", report.Company)
		printCompetitors(report.TopCompetitors)
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [company]",
	Short: "Show recent news and sentiment for a company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := strings.Join(args, " ")
		report := buildEngine().Analyze(cmd.Context(), company, models.Range1Week)
		if !report.Success {
			return fmt.Errorf("analysis failed: %s", report.Error)
		}

		fmt.Printf("📰 News for %s (%s)\n\n", report.Company, report.Ticker)
		printNews(report.Articles, report.Sentiment)
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  MarketLens — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version: %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Analysis:")
		fmt.Printf("    Top K:          %d\n", cfg.Analysis.TopK)
		fmt.Printf("    Max Candidates: %d\n", cfg.Analysis.MaxCandidates)
		fmt.Printf("    Workers:        %d\n", cfg.Analysis.Workers)
		fmt.Printf("    News Limit:     %d\n", cfg.Analysis.NewsLimit)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Output helpers ---

func printReport(r *models.CompanyReport) {
	if !r.Success {
		fmt.Printf("❌ Analysis failed: %s\n", r.Error)
		return
	}

	fmt.Printf("Company:  %s (%s)\n", r.Company, r.Ticker)
	if r.Description != "" {
		fmt.Printf("About:    %s\n", r.Description)
	}
	if !r.Series.IsEmpty() {
		first := r.Series.Closes[0]
		last := r.Series.Latest()
		change := 0.0
		if first != 0 {
			change = (last - first) / first * 100
		}
		fmt.Printf("Price:    %.2f (%+.2f%% over %s, %d sessions)\n", last, change, r.Range, r.Series.Len())
	}
	fmt.Println()

	if len(r.TopCompetitors) > 0 {
		fmt.Println("Top competitors:")
		printCompetitors(r.TopCompetitors)
		fmt.Println()
	}

	if len(r.Articles) > 0 {
		fmt.Println("Recent news:")
		printNews(r.Articles, r.Sentiment)
	}

	fmt.Printf("\nGenerated: %s\n", r.GeneratedAt.Format(time.RFC1123))
}

func printCompetitors(profiles []models.CompetitorProfile) {
	for i, p := range profiles {
		fmt.Printf("  %d. %-20s %-6s cap %s  last %.2f\n", i+1, p.Name, p.Ticker, formatCap(p.MarketCap), p.LatestPrice)
	}
}

func printNews(articles []models.NewsArticle, summary models.SentimentSummary) {
	for _, a := range articles {
		fmt.Printf("  %s [%s] %s\n", sentimentIcon(a.SentimentLabel), a.Source, a.Title)
	}
	if summary.Total > 0 {
		fmt.Printf("\n  Sentiment: %s (%d positive / %d neutral / %d negative, avg %.2f)\n",
			summary.OverallLabel, summary.Positive, summary.Neutral, summary.Negative, summary.AverageScore)
	}
}

func sentimentIcon(label models.SentimentLabel) string {
	switch label {
	case models.SentimentPositive:
		return "🟢"
	case models.SentimentNegative:
		return "🔴"
	default:
		return "⚪"
	}
}

// formatCap renders a market cap in short form, e.g. 3.42T or 850.00B.
func formatCap(v int64) string {
	switch {
	case v >= 1_000_000_000_000:
		return fmt.Sprintf("%.2fT", float64(v)/1e12)
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", float64(v)/1e9)
	case v >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(v)/1e6)
	default:
		return fmt.Sprintf("%d", v)
	}
}
