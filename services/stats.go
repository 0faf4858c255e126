package services

import (
	"sort"

	"wallapop-market/models"
)

// Stats computes basic distribution statistics over a set of prices.
// Returns nil on empty input so callers can distinguish "no data" from a
// degenerate distribution. Pure; the input slice is not modified.
//
// Also reused for lifetime-day distributions, so values are not assumed to
// be currency amounts.
func Stats(prices []float64) *models.PriceStats {
	if len(prices) == 0 {
		return nil
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	n := len(sorted)
	var total float64
	for _, p := range sorted {
		total += p
	}

	med := medianSorted(sorted)

	stats := &models.PriceStats{
		N:      n,
		Mean:   total / float64(n),
		Median: med,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Q1:     med,
		Q2:     med,
		Q3:     med,
	}

	// The quartile estimator is undefined below 4 samples.
	if n >= 4 {
		stats.Q1, stats.Q2, stats.Q3 = quartilesSorted(sorted)
	}

	return stats
}

// medianSorted returns the standard two-case median of a sorted slice.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quartilesSorted estimates q1, q2, q3 with the exclusive method
// (linear interpolation at positions i*(n+1)/4). Requires len >= 4.
func quartilesSorted(sorted []float64) (q1, q2, q3 float64) {
	qs := [3]float64{}
	n := len(sorted)
	m := n + 1
	for i := 1; i <= 3; i++ {
		j := i * m / 4
		delta := i*m - j*4
		if j < 1 {
			j = 1
		}
		if j > n-1 {
			j = n - 1
		}
		qs[i-1] = (sorted[j-1]*float64(4-delta) + sorted[j]*float64(delta)) / 4
	}
	return qs[0], qs[1], qs[2]
}
