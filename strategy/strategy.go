// Package strategy holds the canonical records shared by ingestion,
// analytics and export: a normalized backtest export of one trading
// strategy, and immutable portfolio snapshots built from them.
package strategy

import (
	"bytes"
	"encoding/json"
)

// DataID identifies the instrument and timeframe a strategy was tested on.
type DataID struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

// Label is the human readable "SYMBOL PERIOD" form used in correlation pairs.
func (d DataID) Label() string {
	return d.Symbol + " " + d.Period
}

// Strategy is the canonical record produced by ingestion.
//
// Definition, OpenFilters and CloseFilters are opaque vendor payloads. They
// are carried byte for byte and never interpreted.
type Strategy struct {
	ID            string          `json:"-"`
	DataID        DataID          `json:"dataId"`
	Equity        []float64       `json:"equity"`
	Balance       []float64       `json:"balance"`
	BacktestStats BacktestStats   `json:"backtestStats"`
	Definition    json.RawMessage `json:"strategy"`
	OpenFilters   json.RawMessage `json:"openFilters,omitempty"`
	CloseFilters  json.RawMessage `json:"closeFilters,omitempty"`
}

var emptyObject = json.RawMessage(`{}`)

// MarshalJSON writes the interchange projection of the record: the same
// shape ingestion accepts. An absent definition is written as {} and absent
// filters are left out.
func (s Strategy) MarshalJSON() ([]byte, error) {
	type record Strategy
	r := record(s)
	if isNullRaw(r.Definition) {
		r.Definition = emptyObject
	}
	if isNullRaw(r.OpenFilters) {
		r.OpenFilters = nil
	}
	if isNullRaw(r.CloseFilters) {
		r.CloseFilters = nil
	}
	return json.Marshal(r)
}

// Label returns the DataID label.
func (s Strategy) Label() string {
	return s.DataID.Label()
}

// Clone returns a deep copy. Records are never patched in place; callers
// that need a modified record clone it first.
func (s Strategy) Clone() Strategy {
	out := s
	out.Equity = cloneFloats(s.Equity)
	out.Balance = cloneFloats(s.Balance)
	out.BacktestStats = s.BacktestStats.Clone()
	out.Definition = cloneRaw(s.Definition)
	out.OpenFilters = cloneRaw(s.OpenFilters)
	out.CloseFilters = cloneRaw(s.CloseFilters)
	return out
}

// CloneAll deep copies a slice of records.
func CloneAll(ss []Strategy) []Strategy {
	out := make([]Strategy, len(ss))
	for i, s := range ss {
		out[i] = s.Clone()
	}
	return out
}

func isNullRaw(r json.RawMessage) bool {
	t := bytes.TrimSpace(r)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	out := make(json.RawMessage, len(r))
	copy(out, r)
	return out
}
