package collector

import (
	"context"
	"math"
	"time"

	"NepseAnalyzer/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.PriceBar
	Stocks    []model.Stock
	Err       error
	// Now anchors generated bars; zero means today.
	Now time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		out := make([]model.PriceBar, len(m.DailyData))
		copy(out, m.DailyData)
		return out, nil
	}
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}
	return generateMockBars(m.Price, days, model.Day(now)), nil
}

func (m *MockFetcher) FetchStocks(_ context.Context) ([]model.Stock, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Stocks != nil {
		return m.Stocks, nil
	}
	return []model.Stock{
		{Symbol: "NABIL", CompanyName: "Nabil Bank Limited", Sector: "Commercial Banks"},
		{Symbol: "NTC", CompanyName: "Nepal Doorsanchar Company Limited", Sector: "Others"},
		{Symbol: "UPPER", CompanyName: "Upper Tamakoshi Hydropower Limited", Sector: "Hydro Power"},
	}, nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/7))
		bars[i] = model.PriceBar{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 10000,
		}
	}
	return bars
}
