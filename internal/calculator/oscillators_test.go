package calculator

import (
	"testing"

	"NepseAnalyzer/internal/model"
)

func TestRSI_InsufficientData(t *testing.T) {
	if got := RSI(risingBars(14, 100), 14); len(got) != 0 {
		t.Errorf("expected empty RSI for 14 bars, got %d points", len(got))
	}
	if got := RSI(risingBars(15, 100), 14); len(got) != 1 {
		t.Errorf("expected one RSI point for 15 bars, got %d", len(got))
	}
}

func TestRSI_FlatSeriesUsesLossFloor(t *testing.T) {
	// avgGain = avgLoss = 0 → RS = 0/0.001 = 0 → RSI = 0
	got := RSI(constantBars(20, 100), 14)
	if len(got) != 6 {
		t.Fatalf("expected 6 points, got %d", len(got))
	}
	for i, p := range got {
		if p.Value != 0 {
			t.Errorf("point %d: expected RSI 0, got %v", i, p.Value)
		}
	}
}

func TestRSI_RisingSeriesApproaches100(t *testing.T) {
	got := RSI(risingBars(60, 100), 14)
	last := got[len(got)-1].Value
	// avgGain = 1, avgLoss floored → RS = 1000
	assertClose(t, "RSI rising", last, 100-100.0/1001, 1e-9)
	if last >= 100 {
		t.Errorf("RSI should stay below 100 with the loss floor, got %v", last)
	}
}

func TestRSI_Correctness_Period2(t *testing.T) {
	// changes +1, -1, +2
	// seed: gain 0.5, loss 0.5 → 50
	// next: gain (0.5+2)/2 = 1.25, loss 0.5/2 = 0.25 → RS 5 → 83.333
	bars := barsFromCloses(10, 11, 10, 12)
	got := RSI(bars, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	assertClose(t, "RSI seed", got[0].Value, 50, 1e-9)
	assertClose(t, "RSI smoothed", got[1].Value, 100-100.0/6, 1e-9)
	if !got[0].Date.Equal(bars[2].Date) || !got[1].Date.Equal(bars[3].Date) {
		t.Error("RSI points misaligned with bar dates")
	}
}

func TestRSI_Bounded(t *testing.T) {
	for _, bars := range [][]model.PriceBar{noisyBars(300), risingBars(100, 1), constantBars(40, 5)} {
		for _, p := range RSIDefault(bars) {
			if p.Value < 0 || p.Value > 100 {
				t.Fatalf("RSI out of range: %v", p.Value)
			}
		}
	}
}

func TestMACD_HistogramIsLineMinusSignal(t *testing.T) {
	bars := noisyBars(100)
	res := MACDDefault(bars)
	if len(res.MACDLine) != 75 {
		t.Errorf("expected 75 MACD points, got %d", len(res.MACDLine))
	}
	if len(res.SignalLine) != 67 || len(res.Histogram) != 67 {
		t.Fatalf("expected 67 signal/histogram points, got %d/%d", len(res.SignalLine), len(res.Histogram))
	}
	if !res.MACDLine[0].Date.Equal(bars[25].Date) {
		t.Errorf("MACD should start at slow EMA's first date, got %v", res.MACDLine[0].Date)
	}

	macdByDate := make(map[int64]float64)
	for _, p := range res.MACDLine {
		macdByDate[p.Date.UnixNano()] = p.Value
	}
	for i, h := range res.Histogram {
		s := res.SignalLine[i]
		if !h.Date.Equal(s.Date) {
			t.Fatalf("histogram %d not aligned with signal", i)
		}
		assertClose(t, "histogram", h.Value, macdByDate[h.Date.UnixNano()]-s.Value, 1e-12)
	}
}

func TestMACD_LineIsFastMinusSlow(t *testing.T) {
	bars := noisyBars(80)
	res := MACD(bars, 5, 10, 3)
	fast := EMA(bars, 5, model.FieldClose)
	slow := EMA(bars, 10, model.FieldClose)
	offset := len(fast) - len(slow)
	for i, p := range res.MACDLine {
		assertClose(t, "macd line", p.Value, fast[i+offset].Value-slow[i].Value, 1e-12)
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"no slow EMA", 20},
		{"no signal line", 33},
	}
	for _, tt := range tests {
		res := MACDDefault(noisyBars(tt.n))
		if len(res.MACDLine) != 0 || len(res.SignalLine) != 0 || len(res.Histogram) != 0 {
			t.Errorf("%s: expected all-empty MACD, got %d/%d/%d", tt.name,
				len(res.MACDLine), len(res.SignalLine), len(res.Histogram))
		}
	}
	if res := MACDDefault(noisyBars(34)); len(res.Histogram) != 1 {
		t.Errorf("expected one histogram point at 34 bars, got %d", len(res.Histogram))
	}
}

func TestStochastic_FlatWindowReads50(t *testing.T) {
	res := StochasticDefault(constantBars(30, 250))
	if len(res.K) == 0 || len(res.D) == 0 {
		t.Fatal("expected non-empty stochastic")
	}
	for _, p := range append(res.K, res.D...) {
		if p.Value != 50 {
			t.Errorf("expected 50 for flat window, got %v", p.Value)
		}
	}
}

func TestStochastic_Lengths(t *testing.T) {
	res := StochasticDefault(noisyBars(20))
	// raw 7, %K 5, %D 3
	if len(res.K) != 5 || len(res.D) != 3 {
		t.Errorf("expected 5/3 points, got %d/%d", len(res.K), len(res.D))
	}
	if res := StochasticDefault(noisyBars(13)); len(res.K) != 0 || len(res.D) != 0 {
		t.Error("expected empty stochastic below period")
	}
}

func TestStochastic_Extremes(t *testing.T) {
	// Closing on the window high reads 100, on the low reads 0.
	up := Stochastic(risingBars(10, 1), 3, 1, 1)
	for _, p := range up.K {
		assertClose(t, "%K at high", p.Value, 100, 1e-9)
	}
	down := Stochastic(barsFromCloses(10, 9, 8, 7, 6), 3, 1, 1)
	for _, p := range down.K {
		assertClose(t, "%K at low", p.Value, 0, 1e-9)
	}
}

func TestStochastic_Bounded(t *testing.T) {
	res := StochasticDefault(noisyBars(200))
	for _, p := range append(res.K, res.D...) {
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("stochastic out of range: %v", p.Value)
		}
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		kind  string
		value float64
		want  string
	}{
		{"rsi", 75, "Overbought"},
		{"rsi", 25, "Oversold"},
		{"rsi", 55, "Bullish"},
		{"rsi", 50, "Bearish"},
		{"macd", 0.3, "Bullish"},
		{"macd", 0, "Bearish"},
		{"stochastic", 85, "Overbought"},
		{"stochastic", 15, "Oversold"},
		{"stochastic", 60, "Bullish"},
		{"stochastic", 40, "Bearish"},
		{"atr", 3, "Neutral"},
	}
	for _, tt := range tests {
		if got := Interpret(tt.kind, tt.value); got != tt.want {
			t.Errorf("Interpret(%q, %v) = %q, want %q", tt.kind, tt.value, got, tt.want)
		}
	}
}

func TestWilderSeries_StartAtSeedIndex(t *testing.T) {
	bars := risingBars(30, 100)
	tests := []struct {
		name   string
		points []model.IndicatorPoint
	}{
		{"rsi", RSI(bars, 14)},
		{"atr", ATR(bars, 14)},
	}
	for _, tt := range tests {
		if len(tt.points) != len(bars)-14 {
			t.Errorf("%s: got %d points, want %d", tt.name, len(tt.points), len(bars)-14)
			continue
		}
		if !tt.points[0].Date.Equal(bars[14].Date) {
			t.Errorf("%s: first point dated %v, want %v", tt.name, tt.points[0].Date, bars[14].Date)
		}
		if !tt.points[len(tt.points)-1].Date.Equal(bars[len(bars)-1].Date) {
			t.Errorf("%s: last point not on last bar", tt.name)
		}
	}
}
