package calculator

// Interpret returns a display label for an indicator value.
// Known kinds are "rsi", "macd" and "stochastic"; anything else is Neutral.
func Interpret(kind string, value float64) string {
	switch kind {
	case "rsi":
		switch {
		case value > 70:
			return "Overbought"
		case value < 30:
			return "Oversold"
		case value > 50:
			return "Bullish"
		}
		return "Bearish"
	case "macd":
		if value > 0 {
			return "Bullish"
		}
		return "Bearish"
	case "stochastic":
		switch {
		case value > 80:
			return "Overbought"
		case value < 20:
			return "Oversold"
		case value > 50:
			return "Bullish"
		}
		return "Bearish"
	default:
		return "Neutral"
	}
}
