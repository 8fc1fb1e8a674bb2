package strategy

import "math"

// Names of the metrics every normalized record is guaranteed to carry.
const (
	MetricProfitFactor = "profitFactor"
	MetricMaxDrawdown  = "maxDrawdown"
	MetricSQN          = "sqn"
	MetricTotalReturn  = "totalReturn"
	MetricWinRate      = "winRate"
)

// BacktestStats maps metric names to values. After ingestion the five
// Metric* keys are always present; any other vendor metric is kept under
// its original name.
type BacktestStats map[string]float64

// ProfitFactor returns the reported gross profit / gross loss ratio.
func (b BacktestStats) ProfitFactor() float64 { return b[MetricProfitFactor] }

// MaxDrawdown returns the reported maximum drawdown as exported. Vendors
// disagree on its sign; use AbsMaxDrawdown for comparisons.
func (b BacktestStats) MaxDrawdown() float64 { return b[MetricMaxDrawdown] }

// AbsMaxDrawdown returns |MaxDrawdown()|.
func (b BacktestStats) AbsMaxDrawdown() float64 { return math.Abs(b[MetricMaxDrawdown]) }

func (b BacktestStats) SQN() float64         { return b[MetricSQN] }
func (b BacktestStats) TotalReturn() float64 { return b[MetricTotalReturn] }
func (b BacktestStats) WinRate() float64     { return b[MetricWinRate] }

// Get returns a metric by name, reporting whether it was present.
func (b BacktestStats) Get(name string) (float64, bool) {
	v, ok := b[name]
	return v, ok
}

// Clone returns a copy of the mapping.
func (b BacktestStats) Clone() BacktestStats {
	if b == nil {
		return nil
	}
	out := make(BacktestStats, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
