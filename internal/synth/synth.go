// Package synth generates shaped synthetic market data for fallback paths.
// Whenever a live provider yields nothing usable, the synthesizer keeps every
// downstream consumer working on a non-empty, correctly shaped series —
// trading data fidelity for availability. All randomness in the engine lives
// behind this package.
package synth

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/quantfold/marketlens/pkg/models"
	"github.com/quantfold/marketlens/pkg/utils"
)

// BasePrice anchors every synthetic random walk.
const BasePrice = 100.0

// maxStep bounds the per-step perturbation of the walk.
const maxStep = 2.0

// fallbackNames are the fixed competitor stand-ins used when every live
// candidate fails. Order matters: mock market caps descend with the index.
var fallbackNames = [3]string{"Microsoft", "Apple", "Amazon"}

// Synthesizer produces synthetic price series and competitor profiles.
// Values are pseudo-random; shape (lengths, dates, cap ordering) is
// deterministic.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a synthesizer seeded from the clock, so repeated runs vary.
func New() *Synthesizer {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewWithRand creates a synthesizer with an injected rand source and clock.
// Tests pin both for reproducible values.
func NewWithRand(rng *rand.Rand, now func() time.Time) *Synthesizer {
	return &Synthesizer{rng: rng, now: now}
}

// Series returns a synthetic close-price series for the range: exactly
// Days() points, dated on consecutive calendar days ending today, walking
// randomly around BasePrice.
func (s *Synthesizer) Series(rng models.TimeRange) models.PriceSeries {
	days := rng.Days()
	return models.PriceSeries{
		Dates:  utils.DateLabels(days, s.now()),
		Closes: s.walk(BasePrice, days),
	}
}

// FallbackProfiles returns the fixed trio of synthetic competitor profiles
// with strictly descending mock market caps.
func (s *Synthesizer) FallbackProfiles() []models.CompetitorProfile {
	profiles := make([]models.CompetitorProfile, 0, len(fallbackNames))
	for i, name := range fallbackNames {
		closes := s.walk(BasePrice+float64(i)*10, 30)
		series := models.PriceSeries{
			Dates:  utils.DateLabels(30, s.now()),
			Closes: closes,
		}
		profiles = append(profiles, models.CompetitorProfile{
			Name:        name,
			Ticker:      mockTicker(name),
			MarketCap:   int64(1_000_000_000 * (len(fallbackNames) - i)),
			Series:      series,
			LatestPrice: series.Latest(),
		})
	}
	return profiles
}

// walk produces n prices starting near base with bounded random steps.
func (s *Synthesizer) walk(base float64, n int) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	closes := make([]float64, 0, n)
	price := base
	for i := 0; i < n; i++ {
		price += (s.rng.Float64()*2 - 1) * maxStep
		if price < 1 {
			price = 1 // prices never go non-positive
		}
		closes = append(closes, utils.RoundPrice(price))
	}
	return closes
}

// mockTicker is the pure fallback heuristic: first three letters, upper-cased.
func mockTicker(name string) string {
	if len(name) < 3 {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:3])
}
