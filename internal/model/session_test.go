package model

import (
	"testing"
	"time"
)

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"sunday midday", time.Date(2024, 6, 2, 12, 0, 0, 0, NPT), true},
		{"thursday open", time.Date(2024, 6, 6, 11, 0, 0, 0, NPT), true},
		{"thursday close", time.Date(2024, 6, 6, 15, 0, 0, 0, NPT), true},
		{"after close", time.Date(2024, 6, 6, 15, 1, 0, 0, NPT), false},
		{"before open", time.Date(2024, 6, 3, 10, 59, 0, 0, NPT), false},
		{"friday", time.Date(2024, 6, 7, 12, 0, 0, 0, NPT), false},
		{"saturday", time.Date(2024, 6, 8, 12, 0, 0, 0, NPT), false},
		// 06:15 UTC is 12:00 NPT.
		{"utc input", time.Date(2024, 6, 2, 6, 15, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := IsMarketOpen(tt.t); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPriceBarValue(t *testing.T) {
	b := PriceBar{Open: 1, High: 2, Low: 3, Close: 4, Volume: 5}
	tests := []struct {
		f    Field
		want float64
	}{
		{FieldOpen, 1}, {FieldHigh, 2}, {FieldLow, 3}, {FieldClose, 4}, {FieldVolume, 5}, {"", 4},
	}
	for _, tt := range tests {
		if got := b.Value(tt.f); got != tt.want {
			t.Errorf("Value(%q): got %v, want %v", tt.f, got, tt.want)
		}
	}
}
