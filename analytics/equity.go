package analytics

import "github.com/rustyeddy/stratfolio/strategy"

// Baseline is the starting balance of a merged equity curve.
const Baseline = 100000.0

// PeriodReturns returns the fractional change between consecutive samples.
// A change from a zero sample counts as 0.
func PeriodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return []float64{}
	}
	out := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if prev := equity[i-1]; prev != 0 {
			out[i-1] = (equity[i] - prev) / prev
		}
	}
	return out
}

// MergeEquityCurves sums each strategy's gain over its own first sample
// and adds Baseline. The result is as long as the longest curve; shorter
// curves stop contributing once they run out.
func MergeEquityCurves(ss []strategy.Strategy) []float64 {
	longest := 0
	for _, s := range ss {
		if len(s.Equity) > longest {
			longest = len(s.Equity)
		}
	}

	merged := make([]float64, longest)
	for _, s := range ss {
		if len(s.Equity) == 0 {
			continue
		}
		base := s.Equity[0]
		for i, v := range s.Equity {
			merged[i] += v - base
		}
	}
	for i := range merged {
		merged[i] += Baseline
	}
	return merged
}

// DrawdownSeries returns, per sample, the fractional decline from the
// running peak. Samples under a non-positive peak are 0.
func DrawdownSeries(curve []float64) []float64 {
	out := make([]float64, len(curve))
	if len(curve) == 0 {
		return out
	}
	peak := curve[0]
	for i, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (peak - v) / peak
		}
	}
	return out
}

// MaxDrawdown is the largest value of DrawdownSeries, or 0.
func MaxDrawdown(curve []float64) float64 {
	worst := 0.0
	for _, d := range DrawdownSeries(curve) {
		if d > worst {
			worst = d
		}
	}
	return worst
}
