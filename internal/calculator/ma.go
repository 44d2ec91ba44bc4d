package calculator

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"NepseAnalyzer/internal/model"
)

// SMA computes the simple moving average of field over the given period.
// One point is emitted per bar from index period-1 on; a series shorter
// than period yields an empty result.
func SMA(bars []model.PriceBar, period int, field model.Field) []model.IndicatorPoint {
	dates, vals := extract(bars, field)
	return sma(dates, vals, period)
}

// EMA computes the exponential moving average of field over the given period.
// The first point, at index period-1, is the SMA of the first period values;
// each later point applies ema = (price-ema)*2/(period+1) + ema.
func EMA(bars []model.PriceBar, period int, field model.Field) []model.IndicatorPoint {
	dates, vals := extract(bars, field)
	return ema(dates, vals, period)
}

// SeriesSMA is SMA over an existing indicator series.
func SeriesSMA(points []model.IndicatorPoint, period int) []model.IndicatorPoint {
	dates, vals := unzip(points)
	return sma(dates, vals, period)
}

// SeriesEMA is EMA over an existing indicator series.
func SeriesEMA(points []model.IndicatorPoint, period int) []model.IndicatorPoint {
	dates, vals := unzip(points)
	return ema(dates, vals, period)
}

func sma(dates []time.Time, vals []float64, period int) []model.IndicatorPoint {
	if period <= 0 || len(vals) < period {
		return nil
	}
	out := make([]model.IndicatorPoint, 0, len(vals)-period+1)
	for i := period - 1; i < len(vals); i++ {
		out = append(out, model.IndicatorPoint{
			Date:  dates[i],
			Value: floats.Sum(vals[i-period+1:i+1]) / float64(period),
		})
	}
	return out
}

func ema(dates []time.Time, vals []float64, period int) []model.IndicatorPoint {
	if period <= 0 || len(vals) < period {
		return nil
	}
	k := 2.0 / float64(period+1)

	// Seed must match the first SMA point exactly.
	cur := floats.Sum(vals[:period]) / float64(period)
	out := make([]model.IndicatorPoint, 0, len(vals)-period+1)
	out = append(out, model.IndicatorPoint{Date: dates[period-1], Value: cur})
	for i := period; i < len(vals); i++ {
		cur = (vals[i]-cur)*k + cur
		out = append(out, model.IndicatorPoint{Date: dates[i], Value: cur})
	}
	return out
}

func extract(bars []model.PriceBar, field model.Field) ([]time.Time, []float64) {
	dates := make([]time.Time, len(bars))
	vals := make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		vals[i] = b.Value(field)
	}
	return dates, vals
}

func unzip(points []model.IndicatorPoint) ([]time.Time, []float64) {
	dates := make([]time.Time, len(points))
	vals := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date
		vals[i] = p.Value
	}
	return dates, vals
}

// Last returns the final value of a series, or nil when it is empty.
func Last(points []model.IndicatorPoint) *float64 {
	if len(points) == 0 {
		return nil
	}
	v := points[len(points)-1].Value
	return &v
}
