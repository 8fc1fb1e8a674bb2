// Package analytics computes portfolio level figures from canonical
// strategy records. Every function is pure and total: degenerate input
// yields a neutral value instead of an error.
package analytics

import (
	"math"
	"sort"

	"github.com/rustyeddy/stratfolio/strategy"
)

// PearsonCorrelation returns the correlation of the common prefix of x and
// y, clamped to [-1, 1]. Fewer than two samples, or a constant series,
// yields 0.
func PearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	fn := float64(n)
	num := fn*sumXY - sumX*sumY
	den := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return math.Max(-1, math.Min(1, num/den))
}

// CorrelationMatrix correlates the period returns of every pair of
// strategies. The diagonal is 1 by definition.
func CorrelationMatrix(ss []strategy.Strategy) [][]float64 {
	returns := make([][]float64, len(ss))
	for i, s := range ss {
		returns[i] = PeriodReturns(s.Equity)
	}

	m := make([][]float64, len(ss))
	for i := range m {
		m[i] = make([]float64, len(ss))
		for j := range m[i] {
			if i == j {
				m[i][j] = 1
				continue
			}
			m[i][j] = PearsonCorrelation(returns[i], returns[j])
		}
	}
	return m
}

// AnalyzeCorrelationRisk lists every unordered pair with the magnitude of
// its correlation and risk bucket, strongest first. Pairs of equal
// magnitude keep their matrix order.
func AnalyzeCorrelationRisk(ss []strategy.Strategy) []strategy.CorrelationPair {
	pairs := []strategy.CorrelationPair{}
	if len(ss) < 2 {
		return pairs
	}

	m := CorrelationMatrix(ss)
	for i := 0; i < len(ss); i++ {
		for j := i + 1; j < len(ss); j++ {
			r := math.Abs(m[i][j])
			pairs = append(pairs, strategy.CorrelationPair{
				StrategyA:   ss[i].Label(),
				StrategyB:   ss[j].Label(),
				Correlation: r,
				Risk:        strategy.ClassifyCorrelation(r),
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Correlation > pairs[b].Correlation
	})
	return pairs
}
