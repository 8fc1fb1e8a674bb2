package strategy

// Filter narrows a strategy list. A zero field is not applied.
type Filter struct {
	Symbol          string  `json:"symbol,omitempty"`
	Period          string  `json:"period,omitempty"`
	MinProfitFactor float64 `json:"minProfitFactor,omitempty"`
	MaxDrawdown     float64 `json:"maxDrawdown,omitempty"` // compared with |maxDrawdown|
	MinSQN          float64 `json:"minSQN,omitempty"`
	MinWinRate      float64 `json:"minWinRate,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether s passes every set criterion.
func (f Filter) Match(s Strategy) bool {
	st := s.BacktestStats
	if f.Symbol != "" && s.DataID.Symbol != f.Symbol {
		return false
	}
	if f.Period != "" && s.DataID.Period != f.Period {
		return false
	}
	if f.MinProfitFactor != 0 && st.ProfitFactor() < f.MinProfitFactor {
		return false
	}
	if f.MaxDrawdown != 0 && st.AbsMaxDrawdown() > f.MaxDrawdown {
		return false
	}
	if f.MinSQN != 0 && st.SQN() < f.MinSQN {
		return false
	}
	if f.MinWinRate != 0 && st.WinRate() < f.MinWinRate {
		return false
	}
	return true
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(ss []Strategy) []Strategy {
	out := make([]Strategy, 0, len(ss))
	for _, s := range ss {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}
