package calculator

import "NepseAnalyzer/internal/model"

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// rsiLossFloor replaces a zero average loss so RS stays finite. With no
// losses at all RSI reads slightly below 100 instead of exactly 100, and a
// flat series reads 0.
const rsiLossFloor = 0.001

// RSI computes the Wilder-smoothed Relative Strength Index of closes.
// Requires at least period+1 bars; the first point is dated at index period.
// That first point is the seed average itself, so the series holds
// len(bars)-period points, one more than implementations that start at the
// first smoothed value (index period+1). Every later point is identical.
func RSI(bars []model.PriceBar, period int) []model.IndicatorPoint {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	changes := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		changes[i-1] = bars[i].Close - bars[i-1].Close
	}

	// Initial averages over the first `period` changes
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		if changes[i] > 0 {
			avgGain += changes[i]
		} else {
			avgLoss -= changes[i]
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p

	out := make([]model.IndicatorPoint, 0, len(changes)-period+1)
	out = append(out, model.IndicatorPoint{Date: bars[period].Date, Value: rsiValue(avgGain, avgLoss)})

	for i := period; i < len(changes); i++ {
		gain, loss := 0.0, 0.0
		if changes[i] > 0 {
			gain = changes[i]
		} else {
			loss = -changes[i]
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, model.IndicatorPoint{Date: bars[i+1].Date, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

// RSIDefault is RSI with DefaultRSIPeriod.
func RSIDefault(bars []model.PriceBar) []model.IndicatorPoint {
	return RSI(bars, DefaultRSIPeriod)
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		avgLoss = rsiLossFloor
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
