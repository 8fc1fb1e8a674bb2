package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/rustyeddy/stratfolio/analytics"
	"github.com/rustyeddy/stratfolio/strategy"
)

// SummaryHeader is the first row of WriteSummary output.
var SummaryHeader = []string{
	"Symbol",
	"Timeframe",
	"Profit Factor",
	"Max Drawdown (%)",
	"SQN",
	"Win Rate (%)",
	"Total Return (%)",
}

// WriteSummary writes one row of headline metrics per strategy. Every cell
// is quoted and rows are separated by a bare newline with none after the
// last row.
func WriteSummary(w io.Writer, ss []strategy.Strategy) error {
	rows := make([]string, 0, len(ss)+1)
	rows = append(rows, quoteRow(SummaryHeader))
	for _, s := range ss {
		st := s.BacktestStats
		rows = append(rows, quoteRow([]string{
			s.DataID.Symbol,
			s.DataID.Period,
			f(st.ProfitFactor(), 2),
			f(st.AbsMaxDrawdown(), 2),
			f(st.SQN(), 2),
			f(st.WinRate(), 1),
			f(st.TotalReturn(), 2),
		}))
	}

	if _, err := io.WriteString(w, strings.Join(rows, "\n")); err != nil {
		return &ExportError{Op: "summary", Err: err}
	}
	return nil
}

func quoteRow(cells []string) string {
	q := make([]string, len(cells))
	for i, c := range cells {
		q[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(q, ",")
}

func f(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// CurvePoint is one row of a merged-curve CSV.
type CurvePoint struct {
	Index    int     `csv:"index"`
	Equity   float64 `csv:"equity"`
	Drawdown float64 `csv:"drawdown_pct"`
}

// CurvePoints pairs each merged equity sample with its drawdown percentage.
func CurvePoints(curve []float64) []*CurvePoint {
	dd := analytics.DrawdownSeries(curve)
	out := make([]*CurvePoint, len(curve))
	for i, v := range curve {
		out[i] = &CurvePoint{Index: i, Equity: v, Drawdown: dd[i] * 100}
	}
	return out
}

// WriteCurveCSV writes a merged equity curve with its drawdown.
func WriteCurveCSV(w io.Writer, curve []float64) error {
	points := CurvePoints(curve)
	if err := gocsv.Marshal(&points, w); err != nil {
		return &ExportError{Op: "curve", Err: err}
	}
	return nil
}
