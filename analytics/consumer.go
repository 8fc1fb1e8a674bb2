package analytics

import "github.com/rustyeddy/stratfolio/strategy"

// Correlation bundles the matrix and the ranked pairs of one selection.
type Correlation struct {
	Matrix [][]float64                `json:"matrix"`
	Pairs  []strategy.CorrelationPair `json:"pairs"`
}

// Report is everything a view of a selection needs.
type Report struct {
	Statistics  Statistics  `json:"statistics"`
	Correlation Correlation `json:"correlation"`
	MergedCurve []float64   `json:"mergedCurve"`
	Drawdown    []float64   `json:"drawdown"`
}

// GetStatistics is PortfolioStatistics.
func GetStatistics(ss []strategy.Strategy) Statistics {
	return PortfolioStatistics(ss)
}

// GetCorrelation returns the matrix and the ranked pairs.
func GetCorrelation(ss []strategy.Strategy) Correlation {
	return Correlation{
		Matrix: CorrelationMatrix(ss),
		Pairs:  AnalyzeCorrelationRisk(ss),
	}
}

// GetMergedCurve is MergeEquityCurves.
func GetMergedCurve(ss []strategy.Strategy) []float64 {
	return MergeEquityCurves(ss)
}

// Analyze computes a full Report.
func Analyze(ss []strategy.Strategy) Report {
	curve := MergeEquityCurves(ss)
	return Report{
		Statistics:  PortfolioStatistics(ss),
		Correlation: GetCorrelation(ss),
		MergedCurve: curve,
		Drawdown:    DrawdownSeries(curve),
	}
}
