package calculator

import "NepseAnalyzer/internal/model"

// Default MACD periods.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACD computes the MACD line (fast EMA minus slow EMA of closes), its
// signal line (EMA of the MACD line) and the histogram (MACD minus signal).
// Series are joined on date. If any stage lacks data all three are empty.
func MACD(bars []model.PriceBar, fast, slow, signal int) model.MACDResult {
	fastEMA := EMA(bars, fast, model.FieldClose)
	slowEMA := EMA(bars, slow, model.FieldClose)
	if len(fastEMA) == 0 || len(slowEMA) == 0 {
		return model.MACDResult{}
	}

	macdLine := joinDiff(fastEMA, slowEMA)
	signalLine := SeriesEMA(macdLine, signal)
	if len(macdLine) == 0 || len(signalLine) == 0 {
		return model.MACDResult{}
	}

	return model.MACDResult{
		MACDLine:   macdLine,
		SignalLine: signalLine,
		Histogram:  joinDiff(macdLine, signalLine),
	}
}

// MACDDefault is MACD with 12/26/9.
func MACDDefault(bars []model.PriceBar) model.MACDResult {
	return MACD(bars, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}

// joinDiff returns a-b for every date present in both series, in a's order.
func joinDiff(a, b []model.IndicatorPoint) []model.IndicatorPoint {
	byDate := make(map[int64]float64, len(b))
	for _, p := range b {
		byDate[p.Date.UnixNano()] = p.Value
	}
	var out []model.IndicatorPoint
	for _, p := range a {
		if v, ok := byDate[p.Date.UnixNano()]; ok {
			out = append(out, model.IndicatorPoint{Date: p.Date, Value: p.Value - v})
		}
	}
	return out
}
