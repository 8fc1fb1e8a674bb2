package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/stratfolio/analytics"
	"github.com/rustyeddy/stratfolio/strategy"
)

func printStrategies(w io.Writer, ss []strategy.Strategy) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Symbol", "Period", "PF", "Max DD %", "SQN", "Win %", "Return %")

	for _, s := range ss {
		st := s.BacktestStats
		table.Append(
			s.ID,
			s.DataID.Symbol,
			s.DataID.Period,
			fmt.Sprintf("%.2f", st.ProfitFactor()),
			fmt.Sprintf("%.2f", st.AbsMaxDrawdown()),
			fmt.Sprintf("%.2f", st.SQN()),
			fmt.Sprintf("%.1f", st.WinRate()),
			fmt.Sprintf("%.2f", st.TotalReturn()),
		)
	}

	table.Render()
}

func printStatistics(w io.Writer, st analytics.Statistics) {
	table := tablewriter.NewWriter(w)
	table.Header("Strategies", "Total Return %", "Max DD %", "Sharpe", "Avg PF", "Avg Win %")
	table.Append(
		fmt.Sprintf("%d", st.StrategyCount),
		fmt.Sprintf("%.2f", st.TotalReturn),
		fmt.Sprintf("%.2f", st.MaxDrawdown),
		fmt.Sprintf("%.3f", st.SharpeRatio),
		fmt.Sprintf("%.2f", st.ProfitFactor),
		fmt.Sprintf("%.1f", st.WinRate),
	)
	table.Render()
}

func printPairs(w io.Writer, pairs []strategy.CorrelationPair) {
	if len(pairs) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Strategy A", "Strategy B", "|r|", "Risk")
	for _, p := range pairs {
		table.Append(p.StrategyA, p.StrategyB, fmt.Sprintf("%.3f", p.Correlation), string(p.Risk))
	}
	table.Render()
}

func printPortfolios(w io.Writer, ps []strategy.Portfolio) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Members", "Symbols", "Created")
	for _, p := range ps {
		table.Append(
			p.ID,
			p.Name,
			fmt.Sprintf("%d", len(p.Members)),
			fmt.Sprintf("%v", p.Symbols()),
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}
