package model

// Trend classifies price against the 20/50/200-day SMAs.
type Trend string

const (
	TrendStrongBullish Trend = "STRONG_BULLISH"
	TrendBullish       Trend = "BULLISH"
	TrendNeutral       Trend = "NEUTRAL"
	TrendBearish       Trend = "BEARISH"
	TrendStrongBearish Trend = "STRONG_BEARISH"
)

// LevelSignal classifies an oscillator or band position.
type LevelSignal string

const (
	LevelOverbought LevelSignal = "OVERBOUGHT"
	LevelOversold   LevelSignal = "OVERSOLD"
	LevelBullish    LevelSignal = "BULLISH"
	LevelBearish    LevelSignal = "BEARISH"
)

// MACDSignal classifies the MACD histogram.
type MACDSignal string

const (
	MACDBullishCrossover MACDSignal = "BULLISH_CROSSOVER"
	MACDBearishCrossover MACDSignal = "BEARISH_CROSSOVER"
	MACDBullish          MACDSignal = "BULLISH"
	MACDBearish          MACDSignal = "BEARISH"
)

// Recommendation is the categorical outcome of the score.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Neutral    Recommendation = "NEUTRAL"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// SignalBundle holds one signal per indicator; nil means not computable.
type SignalBundle struct {
	Trend          *Trend       `json:"trend,omitempty"`
	RSI            *LevelSignal `json:"rsi,omitempty"`
	MACD           *MACDSignal  `json:"macd,omitempty"`
	BollingerBands *LevelSignal `json:"bollinger_bands,omitempty"`
}

// RecommendationResult is the final output of the signal generator.
type RecommendationResult struct {
	Recommendation Recommendation `json:"recommendation"`
	Score          int            `json:"score"`
	Signals        SignalBundle   `json:"signals"`
}
