package analysis

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"NepseAnalyzer/internal/cache"
	"NepseAnalyzer/internal/collector"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/recorder"
	"NepseAnalyzer/internal/store"
)

var day0 = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

func waveBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 300 + 20*math.Sin(float64(i)/9) + float64(i)*0.2
		bars[i] = model.PriceBar{
			Date:   day0.AddDate(0, 0, i-n+1),
			Open:   c,
			High:   c + 3,
			Low:    c - 3,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func newTestService(t *testing.T, f collector.Fetcher) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	c := collector.NewCollector(f, st)
	c.Delay = 0
	svc := NewService(st, c)
	svc.Cache = cache.NewMemoryCache()
	svc.Metrics = metrics.NewMetrics()
	return svc, st
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    Interval
		wantErr bool
	}{
		{"", Daily, false},
		{"daily", Daily, false},
		{"WEEKLY", Weekly, false},
		{"1w", Weekly, false},
		{"monthly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrBadInterval) {
				t.Errorf("%q: expected ErrBadInterval, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %q, %v", tt.in, got, err)
		}
	}
}

func TestLatestFetchesOnDemand(t *testing.T) {
	bars := waveBars(260)
	svc, st := newTestService(t, &collector.MockFetcher{DailyData: bars})
	ctx := context.Background()

	lv, err := svc.Latest(ctx, "nabil", Daily)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if ok, _ := st.HasPrices(ctx, "NABIL"); !ok {
		t.Error("prices should have been stored")
	}
	if lv.Price == nil || lv.Price.Close != bars[len(bars)-1].Close {
		t.Errorf("price: %+v", lv.Price)
	}
	if lv.SMA.SMA200 == nil || lv.RSI == nil || lv.MACD.Histogram == nil {
		t.Error("expected full snapshot for 260 bars")
	}
}

func TestLatestServedFromCache(t *testing.T) {
	svc, st := newTestService(t, &collector.MockFetcher{DailyData: waveBars(120)})
	ctx := context.Background()

	first, err := svc.Latest(ctx, "NABIL", Daily)
	if err != nil {
		t.Fatal(err)
	}
	// Replace stored bars behind the service's back; the cached value wins.
	st.SavePrices(ctx, "NABIL", waveBars(60))
	second, err := svc.Latest(ctx, "NABIL", Daily)
	if err != nil {
		t.Fatal(err)
	}
	if *first.RSI != *second.RSI {
		t.Errorf("expected cached snapshot, got RSI %v then %v", *first.RSI, *second.RSI)
	}
}

func TestLatestNoData(t *testing.T) {
	svc, _ := newTestService(t, &collector.MockFetcher{Err: errors.New("upstream down")})
	_, err := svc.Latest(context.Background(), "GHOST", Daily)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestLatestWithoutCollector(t *testing.T) {
	st := store.NewMemoryStore()
	st.SavePrices(context.Background(), "NTC", waveBars(80))
	svc := NewService(st, nil)

	lv, err := svc.Latest(context.Background(), "NTC", Daily)
	if err != nil {
		t.Fatal(err)
	}
	if lv.SMA.SMA50 == nil || lv.SMA.SMA200 != nil {
		t.Error("80 bars should give SMA50 but not SMA200")
	}
}

func TestWeeklyInterval(t *testing.T) {
	svc, _ := newTestService(t, &collector.MockFetcher{DailyData: waveBars(365)})
	ctx := context.Background()

	daily, err := svc.Indicators(ctx, "NABIL", Daily)
	if err != nil {
		t.Fatal(err)
	}
	weekly, err := svc.Indicators(ctx, "NABIL", Weekly)
	if err != nil {
		t.Fatal(err)
	}
	if len(weekly.SMA.SMA20) >= len(daily.SMA.SMA20) {
		t.Errorf("weekly series should be shorter: weekly=%d daily=%d", len(weekly.SMA.SMA20), len(daily.SMA.SMA20))
	}
	if len(weekly.SMA.SMA20) == 0 {
		t.Error("weekly SMA20 should be computable over a year of bars")
	}
}

func TestSignalsMatchLatest(t *testing.T) {
	svc, _ := newTestService(t, &collector.MockFetcher{DailyData: waveBars(250)})
	ctx := context.Background()

	sig, err := svc.Signals(ctx, "NABIL")
	if err != nil {
		t.Fatal(err)
	}
	lv, _ := svc.Latest(ctx, "NABIL", Daily)
	if sig.Recommendation != lv.Signals.Recommendation || sig.Score != lv.Signals.Score {
		t.Errorf("signals %+v differ from latest %+v", sig, lv.Signals)
	}
}

func TestRefreshInvalidatesCacheAndRecords(t *testing.T) {
	ctx := context.Background()
	fetcher := &collector.MockFetcher{DailyData: waveBars(120)}
	svc, _ := newTestService(t, fetcher)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "rec.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()
	svc.Recorder = rec

	first, err := svc.Latest(ctx, "NABIL", Daily)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := rec.LastRecommendation("NABIL"); !ok || got != first.Signals.Recommendation {
		t.Errorf("recorded recommendation: %v %v", got, ok)
	}

	fetcher.DailyData = waveBars(60)
	res, err := svc.Refresh(ctx, []string{"NABIL"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.PricesUpdated != 1 {
		t.Errorf("updated: %d", res.PricesUpdated)
	}

	second, err := svc.Latest(ctx, "NABIL", Daily)
	if err != nil {
		t.Fatal(err)
	}
	if second.SMA.SMA50 == nil || *second.SMA.SMA50 == *first.SMA.SMA50 {
		t.Error("snapshot should be recomputed after refresh")
	}
}

func TestStocksRefreshesStaleListing(t *testing.T) {
	svc, _ := newTestService(t, &collector.MockFetcher{Price: 100})
	stocks, err := svc.Stocks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stocks) != 3 {
		t.Errorf("got %d stocks, want 3", len(stocks))
	}
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t, &collector.MockFetcher{DailyData: waveBars(400)})
	ov, err := svc.Overview(context.Background(), "NABIL")
	if err != nil {
		t.Fatal(err)
	}
	if ov.High52w == nil || ov.Low52w == nil || *ov.High52w < *ov.Low52w {
		t.Errorf("52w range: %+v", ov)
	}
	if ov.Change == nil {
		t.Error("change should be set")
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"3", 3, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLimit(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrBadLimit) {
				t.Errorf("%q: expected ErrBadLimit, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %d, %v", tt.in, got, err)
		}
	}
}

func TestMoversFromStore(t *testing.T) {
	svc, st := newTestService(t, &collector.MockFetcher{DailyData: []model.PriceBar{}})
	ctx := context.Background()
	st.SaveStocks(ctx, []model.Stock{{Symbol: "UP"}, {Symbol: "DOWN"}, {Symbol: "EMPTY"}})
	st.SavePrices(ctx, "UP", []model.PriceBar{
		{Date: day0.AddDate(0, 0, -1), Close: 100},
		{Date: day0, Close: 110},
	})
	st.SavePrices(ctx, "DOWN", []model.PriceBar{
		{Date: day0.AddDate(0, 0, -1), Close: 100},
		{Date: day0, Close: 95},
	})

	mv, err := svc.Movers(ctx, 0)
	if err != nil {
		t.Fatalf("Movers: %v", err)
	}
	if len(mv.Gainers) != 1 || mv.Gainers[0].Symbol != "UP" {
		t.Errorf("gainers: %+v", mv.Gainers)
	}
	if len(mv.Losers) != 1 || mv.Losers[0].Symbol != "DOWN" {
		t.Errorf("losers: %+v", mv.Losers)
	}
	if has, _ := st.HasPrices(ctx, "EMPTY"); has {
		t.Error("movers must not fetch missing prices")
	}
}
