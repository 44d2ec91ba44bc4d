package strategy

import "NepseAnalyzer/internal/model"

// Score adjustments per signal. Signals absent from a table contribute 0.
var (
	TrendWeights = map[model.Trend]int{
		model.TrendStrongBullish: 15,
		model.TrendBullish:       10,
		model.TrendBearish:       -10,
		model.TrendStrongBearish: -15,
	}
	RSIWeights = map[model.LevelSignal]int{
		model.LevelOverbought: -10,
		model.LevelOversold:   10,
		model.LevelBullish:    5,
		model.LevelBearish:    -5,
	}
	MACDWeights = map[model.MACDSignal]int{
		model.MACDBullishCrossover: 15,
		model.MACDBearishCrossover: -15,
		model.MACDBullish:          5,
		model.MACDBearish:          -5,
	}
	BandWeights = map[model.LevelSignal]int{
		model.LevelOverbought: -10,
		model.LevelOversold:   10,
		model.LevelBullish:    5,
		model.LevelBearish:    -5,
	}
)

// classifyTrend compares price with the 20/50/200-day SMAs.
// Only the "above/below all three" cases count as strong.
func classifyTrend(price, sma20, sma50, sma200 float64) model.Trend {
	switch {
	case price > sma20 && price > sma50 && price > sma200:
		return model.TrendStrongBullish
	case price > sma20 && price > sma50:
		return model.TrendBullish
	case price < sma20 && price < sma50 && price < sma200:
		return model.TrendStrongBearish
	case price < sma20 && price < sma50:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

// classifyRSI buckets the latest RSI value.
func classifyRSI(rsi float64) model.LevelSignal {
	switch {
	case rsi > 70:
		return model.LevelOverbought
	case rsi < 30:
		return model.LevelOversold
	case rsi > 50:
		return model.LevelBullish
	default:
		return model.LevelBearish
	}
}

// classifyMACD reads the latest histogram value and, when present, the one
// before it to detect a zero-line crossover.
func classifyMACD(hist []model.IndicatorPoint) model.MACDSignal {
	cur := hist[len(hist)-1].Value
	hasPrev := len(hist) > 1
	var prev float64
	if hasPrev {
		prev = hist[len(hist)-2].Value
	}
	switch {
	case cur > 0 && hasPrev && prev < 0:
		return model.MACDBullishCrossover
	case cur < 0 && hasPrev && prev > 0:
		return model.MACDBearishCrossover
	case cur > 0:
		return model.MACDBullish
	default:
		return model.MACDBearish
	}
}

// classifyBands locates price relative to the Bollinger Bands.
func classifyBands(price, upper, middle, lower float64) model.LevelSignal {
	switch {
	case price > upper:
		return model.LevelOverbought
	case price < lower:
		return model.LevelOversold
	case price > middle:
		return model.LevelBullish
	default:
		return model.LevelBearish
	}
}

// scoreSignals starts at 50, applies every present signal's weight and
// clamps the result to [0, 100].
func scoreSignals(s model.SignalBundle) int {
	score := 50
	if s.Trend != nil {
		score += TrendWeights[*s.Trend]
	}
	if s.RSI != nil {
		score += RSIWeights[*s.RSI]
	}
	if s.MACD != nil {
		score += MACDWeights[*s.MACD]
	}
	if s.BollingerBands != nil {
		score += BandWeights[*s.BollingerBands]
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
