package models

import "testing"

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"1wk":      Range1Week,
		"1mo":      Range1Month,
		"3mo":      Range3Month,
		"":         DefaultRange,
		"1y":       DefaultRange,
		"nonsense": DefaultRange,
	}
	for in, want := range cases {
		if got := ParseTimeRange(in); got != want {
			t.Errorf("ParseTimeRange(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTimeRangeDays(t *testing.T) {
	if got := Range1Week.Days(); got != 7 {
		t.Errorf("1wk days = %d, want 7", got)
	}
	if got := Range1Month.Days(); got != 30 {
		t.Errorf("1mo days = %d, want 30", got)
	}
	if got := Range3Month.Days(); got != 90 {
		t.Errorf("3mo days = %d, want 90", got)
	}
	if got := TimeRange("bogus").Days(); got != 90 {
		t.Errorf("unknown range days = %d, want 90", got)
	}
}

func TestPriceSeriesHelpers(t *testing.T) {
	var empty PriceSeries
	if !empty.IsEmpty() {
		t.Error("zero-value series should be empty")
	}
	if empty.Latest() != 0 {
		t.Errorf("empty series Latest = %v, want 0", empty.Latest())
	}

	s := PriceSeries{
		Dates:  []string{"2025-08-29", "2025-08-30", "2025-08-31"},
		Closes: []float64{101.25, 99.80, 102.40},
	}
	if s.IsEmpty() {
		t.Error("populated series reported empty")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if s.Latest() != 102.40 {
		t.Errorf("Latest = %v, want 102.40", s.Latest())
	}
}
