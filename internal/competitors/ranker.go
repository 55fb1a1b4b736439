package competitors

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantfold/marketlens/internal/synth"
	"github.com/quantfold/marketlens/pkg/models"
)

// TickerResolver maps a company name to its best-guess ticker symbol.
type TickerResolver interface {
	Resolve(ctx context.Context, company string) string
}

// MarketData supplies the per-ticker figures the ranker compares on.
type MarketData interface {
	MarketCap(ctx context.Context, symbol string) (int64, error)
	History(ctx context.Context, symbol string, rng models.TimeRange) (models.PriceSeries, error)
}

// RankerConfig bounds the ranking pipeline.
type RankerConfig struct {
	TopK             int
	MaxCandidates    int
	Workers          int
	CandidateTimeout time.Duration
	FetchTimeout     time.Duration
}

// DefaultRankerConfig matches the limits the CLI runs with.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		TopK:             3,
		MaxCandidates:    10,
		Workers:          5,
		CandidateTimeout: 15 * time.Second,
		FetchTimeout:     10 * time.Second,
	}
}

// Ranker resolves candidate companies concurrently, drops duplicates and
// failures, and keeps the largest by market cap.
type Ranker struct {
	resolver TickerResolver
	market   MarketData
	synth    *synth.Synthesizer
	cfg      RankerConfig
}

// NewRanker creates a Ranker. Zero or negative config fields are replaced
// with the defaults.
func NewRanker(resolver TickerResolver, market MarketData, syn *synth.Synthesizer, cfg RankerConfig) *Ranker {
	def := DefaultRankerConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.CandidateTimeout <= 0 {
		cfg.CandidateTimeout = def.CandidateTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	return &Ranker{resolver: resolver, market: market, synth: syn, cfg: cfg}
}

// Rank processes at most MaxCandidates candidates through a fixed worker
// pool and returns up to TopK profiles ordered by market cap, largest first.
// Candidates resolving to an already-seen ticker are dropped at resolution
// time; candidates whose market data cannot be fetched are dropped silently.
// If nothing survives, the synthetic fallback trio is returned so the caller
// always has something to show.
func (r *Ranker) Rank(ctx context.Context, candidates []models.CompetitorCandidate) []models.CompetitorProfile {
	if len(candidates) > r.cfg.MaxCandidates {
		candidates = candidates[:r.cfg.MaxCandidates]
	}

	jobs := make(chan models.CompetitorCandidate)
	results := make(chan models.CompetitorProfile, len(candidates))

	var seenMu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				profile, ok := r.process(ctx, cand, &seenMu, seen)
				if ok {
					results <- profile
				}
			}
		}()
	}

	for _, cand := range candidates {
		jobs <- cand
	}
	close(jobs)
	wg.Wait()
	close(results)

	profiles := make([]models.CompetitorProfile, 0, len(candidates))
	for p := range results {
		profiles = append(profiles, p)
	}

	if len(profiles) == 0 {
		log.Printf("competitors: no candidates survived ranking, using synthetic fallback")
		return r.synth.FallbackProfiles()
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].MarketCap > profiles[j].MarketCap
	})
	if len(profiles) > r.cfg.TopK {
		profiles = profiles[:r.cfg.TopK]
	}
	return profiles
}

// process resolves one candidate and fetches its market data under the
// per-candidate timeout. The dedup check happens immediately after
// resolution: a ticker is claimed even if its fetch later fails, so a slow
// duplicate can never sneak in behind a failing first attempt.
func (r *Ranker) process(ctx context.Context, cand models.CompetitorCandidate, mu *sync.Mutex, seen map[string]bool) (models.CompetitorProfile, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.CandidateTimeout)
	defer cancel()

	symbol := r.resolver.Resolve(cctx, cand.Name)
	if symbol == "" {
		return models.CompetitorProfile{}, false
	}

	mu.Lock()
	if seen[symbol] {
		mu.Unlock()
		return models.CompetitorProfile{}, false
	}
	seen[symbol] = true
	mu.Unlock()

	var (
		mcap   int64
		series models.PriceSeries
	)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		fctx, fcancel := context.WithTimeout(gctx, r.cfg.FetchTimeout)
		defer fcancel()
		var err error
		mcap, err = r.market.MarketCap(fctx, symbol)
		return err
	})
	g.Go(func() error {
		fctx, fcancel := context.WithTimeout(gctx, r.cfg.FetchTimeout)
		defer fcancel()
		var err error
		series, err = r.market.History(fctx, symbol, models.Range3Month)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("competitors: dropping %s (%s): %v", cand.Name, symbol, err)
		return models.CompetitorProfile{}, false
	}
	if mcap <= 0 || series.IsEmpty() {
		return models.CompetitorProfile{}, false
	}

	return models.CompetitorProfile{
		Name:        cand.Name,
		Ticker:      symbol,
		MarketCap:   mcap,
		Series:      series,
		LatestPrice: series.Latest(),
	}, true
}

// Flatten turns sector groups into the flat candidate list Rank consumes,
// preserving suggestion order.
func Flatten(sectors []models.SectorCompetitors) []models.CompetitorCandidate {
	var out []models.CompetitorCandidate
	for _, s := range sectors {
		for _, name := range s.Companies {
			out = append(out, models.CompetitorCandidate{Name: name, Sector: s.Sector})
		}
	}
	return out
}
