// Package ingest turns uploaded backtest exports into canonical strategy
// records. Vendors spell the headline metrics differently; every spelling
// this package understands is listed in metricAliases.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rustyeddy/stratfolio/strategy"
)

type metricAlias struct {
	metric   string
	aliases  []string
	fallback float64
}

// metricAliases resolves the guaranteed metrics. The first alias present in
// the source wins.
var metricAliases = []metricAlias{
	{strategy.MetricProfitFactor, []string{"profitFactor", "profit_factor", "ProfitFactor", "PF"}, 1},
	{strategy.MetricMaxDrawdown, []string{"maxDrawdown", "max_drawdown", "MaxDrawdown", "DD", "drawdown"}, 0},
	{strategy.MetricSQN, []string{"sqn", "SQN", "systemQualityNumber"}, 0},
	{strategy.MetricTotalReturn, []string{"totalReturn", "total_return", "TotalReturn", "return"}, 0},
	{strategy.MetricWinRate, []string{"winRate", "win_rate", "WinRate", "winningRate", "winning_rate"}, 50},
}

// Normalize validates one raw record and returns its canonical form with a
// fresh ID. label names the record in errors.
func Normalize(raw json.RawMessage, label string) (strategy.Strategy, error) {
	return defaultNormalizer.Normalize(raw, label)
}

// Normalize is the package function with this normalizer's id source.
func (n *Normalizer) Normalize(raw json.RawMessage, label string) (strategy.Strategy, error) {
	s, err := normalizeRecord(raw, label)
	if err != nil {
		return strategy.Strategy{}, err
	}
	s.ID = n.newID()
	return s, nil
}

func normalizeRecord(raw json.RawMessage, label string) (strategy.Strategy, error) {
	invalid := func(cause string, err error) (strategy.Strategy, error) {
		return strategy.Strategy{}, &ValidationError{Context: label, Cause: cause, Err: err}
	}

	var rec map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &rec) != nil {
		return invalid("Record must be a JSON object", nil)
	}

	dataID, ok := rec["dataId"]
	var ids map[string]json.RawMessage
	if !ok || !isObject(dataID) || json.Unmarshal(dataID, &ids) != nil {
		return invalid("Missing or invalid dataId", nil)
	}
	symbol, okSym := toLabel(ids["symbol"])
	period, okPer := toLabel(ids["period"])
	if !okSym || !okPer {
		return invalid("Missing symbol or period in dataId", nil)
	}

	if !isArray(rec["equity"]) || !isArray(rec["balance"]) {
		return invalid("Missing or invalid equity/balance arrays", nil)
	}
	equity, err := toSeries("equity", rec["equity"])
	if err != nil {
		return invalid("Non-numeric equity value", err)
	}
	balance, err := toSeries("balance", rec["balance"])
	if err != nil {
		return invalid("Non-numeric balance value", err)
	}
	if len(equity) == 0 || len(balance) == 0 {
		return invalid("Empty equity/balance arrays", nil)
	}

	var src map[string]json.RawMessage
	if !isObject(rec["backtestStats"]) || json.Unmarshal(rec["backtestStats"], &src) != nil {
		return invalid("Missing or invalid backtestStats", nil)
	}
	stats, err := normalizeStats(src)
	if err != nil {
		return invalid("Non-numeric backtestStats value", err)
	}

	s := strategy.Strategy{
		DataID:        strategy.DataID{Symbol: strings.ToUpper(symbol), Period: period},
		Equity:        equity,
		Balance:       balance,
		BacktestStats: stats,
		Definition:    json.RawMessage(`{}`),
		OpenFilters:   present(rec["openFilters"]),
		CloseFilters:  present(rec["closeFilters"]),
	}
	if def := rec["strategy"]; !isFalsy(def) {
		s.Definition = def
	}
	return s, nil
}

func normalizeStats(src map[string]json.RawMessage) (strategy.BacktestStats, error) {
	out := make(strategy.BacktestStats, len(src)+len(metricAliases))

	for _, m := range metricAliases {
		out[m.metric] = m.fallback
		for _, alias := range m.aliases {
			raw, ok := src[alias]
			if !ok || isNull(raw) {
				continue
			}
			v, err := toFloat(alias, raw)
			if err != nil {
				return nil, err
			}
			out[m.metric] = v
			break
		}
	}

	for key, raw := range src {
		if isNull(raw) || isGuaranteed(key) {
			continue
		}
		v, err := toFloat(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// isGuaranteed reports whether key is one of the canonical metric names.
// Those were already resolved through the alias table.
func isGuaranteed(key string) bool {
	for _, m := range metricAliases {
		if m.metric == key {
			return true
		}
	}
	return false
}

// NormalizePayload parses one uploaded document, a single record or an
// array of them. Any invalid record rejects the whole file.
func NormalizePayload(data []byte, name string) ([]strategy.Strategy, error) {
	return defaultNormalizer.NormalizePayload(data, name)
}

// NormalizePayload is the package function with this normalizer's id source.
func (n *Normalizer) NormalizePayload(data []byte, name string) ([]strategy.Strategy, error) {
	if !json.Valid(data) {
		return nil, &ValidationError{Context: name, Cause: "Invalid JSON format"}
	}

	var items []json.RawMessage
	if isArray(data) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &ValidationError{Context: name, Cause: "Invalid JSON format", Err: err}
		}
	} else {
		items = []json.RawMessage{data}
	}

	out := make([]strategy.Strategy, 0, len(items))
	for i, item := range items {
		s, err := n.Normalize(item, fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return kind(raw) == 'n'
}

func present(raw json.RawMessage) json.RawMessage {
	if raw == nil || isNull(raw) {
		return nil
	}
	return raw
}
