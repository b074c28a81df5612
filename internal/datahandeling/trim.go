package datahandeling

import "sort"

// Cyclictest runs last four hours; the first half hour is discarded as
// warm-up. Samples are assumed to be evenly spread over the run.
const (
	RunMinutes    = 4 * 60
	WarmupMinutes = 30
)

// WarmupCount returns how many leading samples of an n-sample run fall into
// the warm-up period, i.e. floor(n * 30 / 240).
func WarmupCount(n int) int {
	if n <= 0 {
		return 0
	}
	return n * WarmupMinutes / RunMinutes
}

// TrimWarmup drops the warm-up prefix and returns the remainder sorted
// ascending. The input slice is left untouched.
//
// Applying it twice is not a no-op: the second pass drops another eighth of
// the already trimmed (and now sorted) data.
func TrimWarmup(data []float64) []float64 {
	cut := WarmupCount(len(data))
	out := make([]float64, len(data)-cut)
	copy(out, data[cut:])
	sort.Float64s(out)
	return out
}
