package strategy

import (
	"errors"
	"time"
)

// ErrEmptyPortfolio is returned when a portfolio would have no members.
var ErrEmptyPortfolio = errors.New("portfolio must have at least one member")

// Portfolio is an immutable snapshot of a selection of strategies. Members
// are held by value, so later changes to the library or the selection do
// not reach a portfolio that was already created.
type Portfolio struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Members   []Strategy `json:"members"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewPortfolio deep copies members into a new snapshot.
func NewPortfolio(id, name string, members []Strategy, createdAt time.Time) (Portfolio, error) {
	if len(members) == 0 {
		return Portfolio{}, ErrEmptyPortfolio
	}
	return Portfolio{
		ID:        id,
		Name:      name,
		Members:   CloneAll(members),
		CreatedAt: createdAt,
	}, nil
}

// Symbols returns the distinct member symbols in first-appearance order.
func (p Portfolio) Symbols() []string {
	return distinct(p.Members, func(s Strategy) string { return s.DataID.Symbol })
}

// Timeframes returns the distinct member periods in first-appearance order.
func (p Portfolio) Timeframes() []string {
	return distinct(p.Members, func(s Strategy) string { return s.DataID.Period })
}

func distinct(ss []Strategy, key func(Strategy) string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		k := key(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
