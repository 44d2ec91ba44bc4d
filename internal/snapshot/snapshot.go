// Package snapshot projects full indicator series into display views.
package snapshot

import (
	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/strategy"
)

// CalculateAll computes every indicator series with default parameters.
func CalculateAll(bars []model.PriceBar) *model.IndicatorSet {
	set := &model.IndicatorSet{}
	set.SMA.SMA20 = calculator.SMA(bars, 20, model.FieldClose)
	set.SMA.SMA50 = calculator.SMA(bars, 50, model.FieldClose)
	set.SMA.SMA200 = calculator.SMA(bars, 200, model.FieldClose)
	set.EMA.EMA9 = calculator.EMA(bars, 9, model.FieldClose)
	set.EMA.EMA21 = calculator.EMA(bars, 21, model.FieldClose)
	set.RSI = calculator.RSIDefault(bars)
	set.MACD = calculator.MACDDefault(bars)
	set.BollingerBands = calculator.BollingerBandsDefault(bars)
	set.ATR = calculator.ATRDefault(bars)
	set.Stochastic = calculator.StochasticDefault(bars)
	set.Signals = strategy.GenerateSignals(bars)
	return set
}

// Latest returns the most recent value of every indicator together with the
// latest bar and the recommendation. Nothing is cached.
func Latest(bars []model.PriceBar) *model.LatestValues {
	return Project(bars, CalculateAll(bars))
}

// Project reduces an already computed IndicatorSet to its latest values.
func Project(bars []model.PriceBar, set *model.IndicatorSet) *model.LatestValues {
	lv := &model.LatestValues{}
	if len(bars) > 0 {
		b := bars[len(bars)-1]
		lv.Price = &b
	}

	lv.SMA.SMA20 = calculator.Last(set.SMA.SMA20)
	lv.SMA.SMA50 = calculator.Last(set.SMA.SMA50)
	lv.SMA.SMA200 = calculator.Last(set.SMA.SMA200)
	lv.EMA.EMA9 = calculator.Last(set.EMA.EMA9)
	lv.EMA.EMA21 = calculator.Last(set.EMA.EMA21)
	lv.RSI = calculator.Last(set.RSI)
	lv.MACD.Line = calculator.Last(set.MACD.MACDLine)
	lv.MACD.Signal = calculator.Last(set.MACD.SignalLine)
	lv.MACD.Histogram = calculator.Last(set.MACD.Histogram)
	lv.BollingerBands.Upper = calculator.Last(set.BollingerBands.UpperBand)
	lv.BollingerBands.Middle = calculator.Last(set.BollingerBands.MiddleBand)
	lv.BollingerBands.Lower = calculator.Last(set.BollingerBands.LowerBand)
	lv.ATR = calculator.Last(set.ATR)
	lv.Stochastic.K = calculator.Last(set.Stochastic.K)
	lv.Stochastic.D = calculator.Last(set.Stochastic.D)
	lv.Signals = set.Signals
	return lv
}
