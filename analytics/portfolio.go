package analytics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/rustyeddy/stratfolio/strategy"
)

// Statistics summarizes a set of strategies traded together. Percentages
// are in percent, not fractions.
type Statistics struct {
	TotalReturn   float64 `json:"totalReturn"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	ProfitFactor  float64 `json:"profitFactor"`
	WinRate       float64 `json:"winRate"`
	StrategyCount int     `json:"strategyCount"`
}

// EmptyStatistics is the result for no strategies.
var EmptyStatistics = Statistics{ProfitFactor: 1}

// PortfolioStatistics derives return, drawdown and Sharpe from the merged
// curve. Profit factor and win rate are plain averages of the members'
// reported values.
func PortfolioStatistics(ss []strategy.Strategy) Statistics {
	if len(ss) == 0 {
		return EmptyStatistics
	}

	curve := MergeEquityCurves(ss)
	st := Statistics{
		MaxDrawdown:   MaxDrawdown(curve) * 100,
		SharpeRatio:   sharpe(PeriodReturns(curve)),
		StrategyCount: len(ss),
	}
	if len(curve) > 0 && curve[0] != 0 {
		st.TotalReturn = (curve[len(curve)-1] - curve[0]) / curve[0] * 100
	}

	for _, s := range ss {
		st.ProfitFactor += s.BacktestStats.ProfitFactor()
		st.WinRate += s.BacktestStats.WinRate()
	}
	st.ProfitFactor /= float64(len(ss))
	st.WinRate /= float64(len(ss))
	return st
}

// sharpe is mean over sample standard deviation with a zero risk free rate.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return mean / sd
}
