package utils

import (
	"math"
	"time"
)

// DateLayout is the calendar-day label format used across price series.
const DateLayout = "2006-01-02"

// RoundPrice rounds a price to two decimal places.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateLabels returns n consecutive calendar-day labels ending at today,
// oldest first.
func DateLabels(n int, today time.Time) []string {
	labels := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		labels = append(labels, today.AddDate(0, 0, -i).Format(DateLayout))
	}
	return labels
}

// NewsWindow returns the trailing 7-day window ending at now,
// used for news searches.
func NewsWindow(now time.Time) (from, to time.Time) {
	return now.AddDate(0, 0, -7), now
}
