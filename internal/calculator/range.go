package calculator

import (
	"errors"
	"math"

	"NepseAnalyzer/internal/model"
)

// Calculate52WeekRange returns the highest high and lowest low of the bars
// dated within one year of the latest bar.
func Calculate52WeekRange(bars []model.PriceBar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	cutoff := bars[len(bars)-1].Date.AddDate(-1, 0, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Date.Before(cutoff) {
			break
		}
		high = math.Max(high, bars[i].High)
		low = math.Min(low, bars[i].Low)
	}
	return high, low, nil
}

// CalculatePriceChange returns the latest close's change against the
// previous close, absolute and in percent.
func CalculatePriceChange(bars []model.PriceBar) (change, percent float64, err error) {
	if len(bars) < 2 {
		return 0, 0, errors.New("need at least two bars")
	}
	prev := bars[len(bars)-2].Close
	change = bars[len(bars)-1].Close - prev
	if prev == 0 {
		return change, 0, nil
	}
	return change, change / prev * 100, nil
}
