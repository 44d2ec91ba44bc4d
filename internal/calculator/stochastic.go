package calculator

import (
	"gonum.org/v1/gonum/floats"

	"NepseAnalyzer/internal/model"
)

// Default Stochastic Oscillator parameters.
const (
	DefaultStochasticPeriod  = 14
	DefaultStochasticSmoothK = 3
	DefaultStochasticSmoothD = 3
)

// flatRangeK is the raw %K reported when the window's high equals its low.
const flatRangeK = 50.0

// Stochastic computes the slow Stochastic Oscillator. Raw %K compares each
// close to the trailing period high/low range; %K is SMA(smoothK) of raw %K
// and %D is SMA(smoothD) of %K.
func Stochastic(bars []model.PriceBar, period, smoothK, smoothD int) model.StochasticResult {
	if period <= 0 || len(bars) < period {
		return model.StochasticResult{}
	}

	_, highs := extract(bars, model.FieldHigh)
	_, lows := extract(bars, model.FieldLow)

	rawK := make([]model.IndicatorPoint, 0, len(bars)-period+1)
	for i := period - 1; i < len(bars); i++ {
		hh := floats.Max(highs[i-period+1 : i+1])
		ll := floats.Min(lows[i-period+1 : i+1])
		k := flatRangeK
		if hh != ll {
			k = (bars[i].Close - ll) / (hh - ll) * 100
		}
		rawK = append(rawK, model.IndicatorPoint{Date: bars[i].Date, Value: k})
	}

	k := SeriesSMA(rawK, smoothK)
	return model.StochasticResult{
		K: k,
		D: SeriesSMA(k, smoothD),
	}
}

// StochasticDefault is Stochastic with 14/3/3.
func StochasticDefault(bars []model.PriceBar) model.StochasticResult {
	return Stochastic(bars, DefaultStochasticPeriod, DefaultStochasticSmoothK, DefaultStochasticSmoothD)
}
