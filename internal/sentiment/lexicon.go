// Package sentiment implements an offline lexicon-based headline scorer.
// No LLM or external service is involved: scores are a deterministic
// function of the input text, and labels a deterministic function of scores.
package sentiment

import (
	"strings"

	"github.com/quantfold/marketlens/pkg/models"
)

// Threshold separates Neutral from Positive/Negative, applied symmetrically.
const Threshold = 0.05

// positive / negative keyword dictionaries (lowercase), weighted by how
// decisive the word tends to be in financial headlines.
var positiveWords = map[string]float64{
	"rally": 0.6, "surge": 0.7, "soar": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"beats estimate": 0.6, "exceeds": 0.5, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "gain": 0.4, "wins": 0.4,
	"launch": 0.3, "partnership": 0.3, "bullish": 0.7,
}

var negativeWords = map[string]float64{
	"crash": 0.8, "plunge": 0.7, "slump": 0.6, "tumble": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5, "layoff": 0.6,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"probe": 0.5, "lawsuit": 0.5, "recall": 0.5, "cut": 0.3,
	"miss": 0.5, "warning": 0.5, "concern": 0.3, "bearish": 0.7,
}

// Score returns a compound sentiment score for the given text
// in [-1, 1]. Text with no lexicon matches scores 0.
func Score(text string) float64 {
	lower := strings.ToLower(text)

	posScore := 0.0
	negScore := 0.0

	for word, weight := range positiveWords {
		if strings.Contains(lower, word) {
			posScore += weight
		}
	}
	for word, weight := range negativeWords {
		if strings.Contains(lower, word) {
			negScore += weight
		}
	}

	total := posScore + negScore
	if total == 0 {
		return 0
	}

	// Net score normalized to -1..+1.
	return (posScore - negScore) / total
}

// Label classifies a score with the fixed ±0.05 thresholds.
func Label(score float64) models.SentimentLabel {
	switch {
	case score >= Threshold:
		return models.SentimentPositive
	case score <= -Threshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
