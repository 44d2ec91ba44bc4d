package calculator

import (
	"math"
	"testing"
	"time"

	"NepseAnalyzer/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes ...float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Date:  day0.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func constantBars(n int, price float64) []model.PriceBar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return barsFromCloses(closes...)
}

func risingBars(n int, start float64) []model.PriceBar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)
	}
	return barsFromCloses(closes...)
}

// noisyBars is a deterministic oscillating series with a mild uptrend.
func noisyBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		c := 100 + 10*math.Sin(x*0.3) + x*0.05 + 3*math.Sin(x*1.7)
		bars[i] = model.PriceBar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c - 0.5*math.Sin(x),
			High:   c + 1 + math.Abs(math.Sin(x)),
			Low:    c - 1 - math.Abs(math.Cos(x)),
			Close:  c,
			Volume: int64(1000 + i),
		}
	}
	return bars
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}
