package model

import "time"

// Field selects which value of a PriceBar an indicator reads.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
)

// PriceBar represents one trading day for a symbol.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Value returns the bar's value for f. Unknown fields read the close.
func (b PriceBar) Value(f Field) float64 {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldVolume:
		return float64(b.Volume)
	default:
		return b.Close
	}
}

// PriceSeries holds the daily bars of one symbol, ascending by date.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Latest returns the most recent bar, or nil for an empty series.
func (s PriceSeries) Latest() *PriceBar {
	if len(s.Bars) == 0 {
		return nil
	}
	b := s.Bars[len(s.Bars)-1]
	return &b
}

// Stock is listing metadata for a traded company.
type Stock struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
