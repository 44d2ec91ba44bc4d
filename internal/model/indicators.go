package model

import "time"

// IndicatorPoint is one indicator output aligned to the date of the bar
// that produced it.
type IndicatorPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MACDResult holds the three MACD series.
type MACDResult struct {
	MACDLine   []IndicatorPoint `json:"macd_line"`
	SignalLine []IndicatorPoint `json:"signal_line"`
	Histogram  []IndicatorPoint `json:"histogram"`
}

// BollingerBandsResult holds the three band series.
type BollingerBandsResult struct {
	UpperBand  []IndicatorPoint `json:"upper_band"`
	MiddleBand []IndicatorPoint `json:"middle_band"`
	LowerBand  []IndicatorPoint `json:"lower_band"`
}

// StochasticResult holds the smoothed %K and %D series.
type StochasticResult struct {
	K []IndicatorPoint `json:"k"`
	D []IndicatorPoint `json:"d"`
}

// IndicatorSet bundles every indicator series computed for one series.
type IndicatorSet struct {
	SMA struct {
		SMA20  []IndicatorPoint `json:"sma20"`
		SMA50  []IndicatorPoint `json:"sma50"`
		SMA200 []IndicatorPoint `json:"sma200"`
	} `json:"sma"`
	EMA struct {
		EMA9  []IndicatorPoint `json:"ema9"`
		EMA21 []IndicatorPoint `json:"ema21"`
	} `json:"ema"`
	RSI            []IndicatorPoint     `json:"rsi"`
	MACD           MACDResult           `json:"macd"`
	BollingerBands BollingerBandsResult `json:"bollinger_bands"`
	ATR            []IndicatorPoint     `json:"atr"`
	Stochastic     StochasticResult     `json:"stochastic"`
	Signals        RecommendationResult `json:"signals"`
}

// LatestValues is the most recent value of every indicator. A nil pointer
// means the underlying series was empty.
type LatestValues struct {
	Price *PriceBar `json:"price"`
	SMA   struct {
		SMA20  *float64 `json:"sma20"`
		SMA50  *float64 `json:"sma50"`
		SMA200 *float64 `json:"sma200"`
	} `json:"sma"`
	EMA struct {
		EMA9  *float64 `json:"ema9"`
		EMA21 *float64 `json:"ema21"`
	} `json:"ema"`
	RSI  *float64 `json:"rsi"`
	MACD struct {
		Line      *float64 `json:"line"`
		Signal    *float64 `json:"signal"`
		Histogram *float64 `json:"histogram"`
	} `json:"macd"`
	BollingerBands struct {
		Upper  *float64 `json:"upper"`
		Middle *float64 `json:"middle"`
		Lower  *float64 `json:"lower"`
	} `json:"bollinger_bands"`
	ATR        *float64 `json:"atr"`
	Stochastic struct {
		K *float64 `json:"k"`
		D *float64 `json:"d"`
	} `json:"stochastic"`
	Signals RecommendationResult `json:"signals"`
}
