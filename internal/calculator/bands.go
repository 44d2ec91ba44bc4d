package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"NepseAnalyzer/internal/model"
)

// Default Bollinger Band parameters.
const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0
)

// BollingerBands computes the middle band as SMA(period) of closes and the
// outer bands at multiplier population standard deviations (divisor period)
// of the same close window. The deviation always reads closes.
func BollingerBands(bars []model.PriceBar, period int, multiplier float64) model.BollingerBandsResult {
	middle := SMA(bars, period, model.FieldClose)
	if len(middle) == 0 {
		return model.BollingerBandsResult{}
	}

	_, closes := extract(bars, model.FieldClose)
	upper := make([]model.IndicatorPoint, len(middle))
	lower := make([]model.IndicatorPoint, len(middle))
	for i, m := range middle {
		j := i + period - 1
		v := stat.PopVariance(closes[j-period+1:j+1], nil)
		if v < 0 {
			v = 0
		}
		sd := math.Sqrt(v)
		upper[i] = model.IndicatorPoint{Date: m.Date, Value: m.Value + multiplier*sd}
		lower[i] = model.IndicatorPoint{Date: m.Date, Value: m.Value - multiplier*sd}
	}

	return model.BollingerBandsResult{
		UpperBand:  upper,
		MiddleBand: middle,
		LowerBand:  lower,
	}
}

// BollingerBandsDefault is BollingerBands with 20 and 2.
func BollingerBandsDefault(bars []model.PriceBar) model.BollingerBandsResult {
	return BollingerBands(bars, DefaultBollingerPeriod, DefaultBollingerMultiplier)
}
