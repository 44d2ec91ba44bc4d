package calculator

import (
	"math"

	"NepseAnalyzer/internal/model"
)

// DefaultATRPeriod is the conventional ATR lookback.
const DefaultATRPeriod = 14

// ATR computes the Wilder-smoothed Average True Range.
// Requires at least period+1 bars; the first point is dated at index period.
// As with RSI the seed average is emitted, giving len(bars)-period points.
func ATR(bars []model.PriceBar, period int) []model.IndicatorPoint {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	trueRanges := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trueRanges[i-1] = trueRange(bars[i], bars[i-1].Close)
	}

	p := float64(period)
	var atr float64
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= p

	out := make([]model.IndicatorPoint, 0, len(trueRanges)-period+1)
	out = append(out, model.IndicatorPoint{Date: bars[period].Date, Value: atr})
	for i := period; i < len(trueRanges); i++ {
		atr = (atr*(p-1) + trueRanges[i]) / p
		out = append(out, model.IndicatorPoint{Date: bars[i+1].Date, Value: atr})
	}
	return out
}

// ATRDefault is ATR with DefaultATRPeriod.
func ATRDefault(bars []model.PriceBar) []model.IndicatorPoint {
	return ATR(bars, DefaultATRPeriod)
}

func trueRange(b model.PriceBar, prevClose float64) float64 {
	return math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}
