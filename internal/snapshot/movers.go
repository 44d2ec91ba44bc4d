package snapshot

import (
	"sort"
	"time"

	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/model"
)

// DefaultMoversLimit caps each side of the movers table.
const DefaultMoversLimit = 5

// Mover is one symbol's latest close against the previous close.
type Mover struct {
	Symbol        string    `json:"symbol"`
	Date          time.Time `json:"date"`
	Close         float64   `json:"close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
}

// Movers holds the top gainers (largest percent rise first) and losers
// (largest percent fall first).
type Movers struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}

// RankMovers ranks every series with at least two bars by daily percent
// change. Unchanged symbols appear on neither side. limit <= 0 means
// DefaultMoversLimit.
func RankMovers(series []model.PriceSeries, limit int) Movers {
	if limit <= 0 {
		limit = DefaultMoversLimit
	}
	out := Movers{Gainers: []Mover{}, Losers: []Mover{}}
	for _, s := range series {
		change, pct, err := calculator.CalculatePriceChange(s.Bars)
		if err != nil {
			continue
		}
		last := s.Bars[len(s.Bars)-1]
		m := Mover{Symbol: s.Symbol, Date: last.Date, Close: last.Close, Change: change, ChangePercent: pct}
		switch {
		case pct > 0:
			out.Gainers = append(out.Gainers, m)
		case pct < 0:
			out.Losers = append(out.Losers, m)
		}
	}
	sort.SliceStable(out.Gainers, func(i, j int) bool {
		return out.Gainers[i].ChangePercent > out.Gainers[j].ChangePercent
	})
	sort.SliceStable(out.Losers, func(i, j int) bool {
		return out.Losers[i].ChangePercent < out.Losers[j].ChangePercent
	})
	if len(out.Gainers) > limit {
		out.Gainers = out.Gainers[:limit]
	}
	if len(out.Losers) > limit {
		out.Losers = out.Losers[:limit]
	}
	return out
}
