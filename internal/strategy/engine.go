package strategy

import (
	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/model"
)

// MinBars is the shortest series GenerateSignals will analyse.
const MinBars = 50

// Thresholds maps a score to a recommendation. Entries are checked in
// order; the first match wins.
var Thresholds = []struct {
	Match          func(score int) bool
	Recommendation model.Recommendation
}{
	{func(s int) bool { return s >= 80 }, model.StrongBuy},
	{func(s int) bool { return s >= 60 }, model.Buy},
	{func(s int) bool { return s <= 20 }, model.StrongSell},
	{func(s int) bool { return s <= 40 }, model.Sell},
}

// MapRecommendation maps a score to its recommendation.
func MapRecommendation(score int) model.Recommendation {
	for _, t := range Thresholds {
		if t.Match(score) {
			return t.Recommendation
		}
	}
	return model.Neutral
}

// NeutralResult is returned for series too short to analyse.
func NeutralResult() model.RecommendationResult {
	return model.RecommendationResult{Recommendation: model.Neutral, Score: 50}
}

// GenerateSignals classifies the latest trend, RSI, MACD and Bollinger state
// of bars and combines them into a score and recommendation.
func GenerateSignals(bars []model.PriceBar) model.RecommendationResult {
	if len(bars) < MinBars {
		return NeutralResult()
	}

	price := bars[len(bars)-1].Close
	sma20 := calculator.Last(calculator.SMA(bars, 20, model.FieldClose))
	sma50 := calculator.Last(calculator.SMA(bars, 50, model.FieldClose))
	sma200 := calculator.Last(calculator.SMA(bars, 200, model.FieldClose))
	rsi := calculator.Last(calculator.RSIDefault(bars))
	macd := calculator.MACDDefault(bars)
	bb := calculator.BollingerBandsDefault(bars)

	var signals model.SignalBundle

	if sma20 != nil && sma50 != nil && sma200 != nil {
		t := classifyTrend(price, *sma20, *sma50, *sma200)
		signals.Trend = &t
	}

	if rsi != nil {
		r := classifyRSI(*rsi)
		signals.RSI = &r
	}

	if len(macd.Histogram) > 0 {
		m := classifyMACD(macd.Histogram)
		signals.MACD = &m
	}

	upper := calculator.Last(bb.UpperBand)
	middle := calculator.Last(bb.MiddleBand)
	lower := calculator.Last(bb.LowerBand)
	if upper != nil && middle != nil && lower != nil {
		b := classifyBands(price, *upper, *middle, *lower)
		signals.BollingerBands = &b
	}

	score := scoreSignals(signals)
	return model.RecommendationResult{
		Recommendation: MapRecommendation(score),
		Score:          score,
		Signals:        signals,
	}
}
