// Package stats computes the descriptive statistics reported per dataset.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

var ErrEmpty = errors.New("dataset is empty")

// Summary holds the figures of one statistics row.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the summary of data. The standard deviation is the
// population one and quartiles interpolate linearly between order
// statistics.
func Summarize(data []float64) (Summary, error) {
	if len(data) == 0 {
		return Summary{}, ErrEmpty
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	s := Summary{Count: len(data)}
	var err error
	if s.Mean, err = mstats.Mean(sorted); err != nil {
		return Summary{}, fmt.Errorf("mean: %w", err)
	}
	if s.Median, err = mstats.Median(sorted); err != nil {
		return Summary{}, fmt.Errorf("median: %w", err)
	}
	if s.StdDev, err = mstats.StandardDeviationPopulation(sorted); err != nil {
		return Summary{}, fmt.Errorf("std: %w", err)
	}
	if s.Min, err = mstats.Min(sorted); err != nil {
		return Summary{}, fmt.Errorf("min: %w", err)
	}
	if s.Max, err = mstats.Max(sorted); err != nil {
		return Summary{}, fmt.Errorf("max: %w", err)
	}
	s.Q1 = LinearPercentile(sorted, 25)
	s.Q3 = LinearPercentile(sorted, 75)
	return s, nil
}

// StdDev returns the population standard deviation, or 0 for empty data.
func StdDev(data []float64) float64 {
	sd, err := mstats.StandardDeviationPopulation(data)
	if err != nil {
		return 0
	}
	return sd
}

// Mean returns the arithmetic mean, or 0 for empty data.
func Mean(data []float64) float64 {
	m, err := mstats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

// LinearPercentile returns the p-th percentile of sorted data using linear
// interpolation between the two closest ranks (rank = p/100 * (n-1)).
func LinearPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
