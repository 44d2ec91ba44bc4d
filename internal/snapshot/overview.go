package snapshot

import (
	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/model"
)

// Overview summarises the latest price against the previous close and the
// trailing 52-week range.
type Overview struct {
	Symbol        string          `json:"symbol"`
	Price         *model.PriceBar `json:"price"`
	Change        *float64        `json:"change"`
	ChangePercent *float64        `json:"change_percent"`
	High52w       *float64        `json:"high_52w"`
	Low52w        *float64        `json:"low_52w"`
}

// NewOverview builds the overview for a series. Fields that cannot be
// computed are left nil.
func NewOverview(series model.PriceSeries) *Overview {
	ov := &Overview{Symbol: series.Symbol, Price: series.Latest()}
	if change, pct, err := calculator.CalculatePriceChange(series.Bars); err == nil {
		ov.Change = &change
		ov.ChangePercent = &pct
	}
	if high, low, err := calculator.Calculate52WeekRange(series.Bars); err == nil {
		ov.High52w = &high
		ov.Low52w = &low
	}
	return ov
}
