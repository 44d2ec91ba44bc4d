package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NepseAnalyzer/internal/analysis"
	"NepseAnalyzer/internal/cache"
	"NepseAnalyzer/internal/collector"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/store"
)

var day0 = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

func risingBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		p := 100 + 0.01*float64(i*i)
		bars[i] = model.PriceBar{Date: day0.AddDate(0, 0, i-n+1), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10}
	}
	return bars
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	st.SavePrices(ctx, "NABIL", risingBars(250))
	st.SaveStock(ctx, model.Stock{Symbol: "NABIL", CompanyName: "Nabil Bank Limited", Sector: "Commercial Banks"})
	st.SetLastUpdated(ctx, time.Now())

	col := collector.NewCollector(&collector.MockFetcher{DailyData: []model.PriceBar{}}, st)
	svc := analysis.NewService(st, col)
	svc.Cache = cache.NewMemoryCache()

	srv := httptest.NewServer(NewServer(svc, metrics.NewMetrics()).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func getJSON(t *testing.T, url string, dst interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestStocks(t *testing.T) {
	srv, _ := newTestServer(t)
	var stocks []model.Stock
	resp := getJSON(t, srv.URL+"/api/stocks", &stocks)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
	if len(stocks) != 1 || stocks[0].CompanyName != "Nabil Bank Limited" {
		t.Errorf("got %+v", stocks)
	}
}

func TestStockNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/stocks/NOPE", &body)
	if resp.StatusCode != http.StatusNotFound || body["error"] == "" {
		t.Errorf("status %d body %v", resp.StatusCode, body)
	}
}

func TestPrices(t *testing.T) {
	srv, _ := newTestServer(t)
	var series model.PriceSeries
	getJSON(t, srv.URL+"/api/stocks/nabil/prices", &series)
	if series.Symbol != "NABIL" || len(series.Bars) != 250 {
		t.Errorf("got %s with %d bars", series.Symbol, len(series.Bars))
	}
}

func TestLatest(t *testing.T) {
	srv, _ := newTestServer(t)
	var lv model.LatestValues
	resp := getJSON(t, srv.URL+"/api/stocks/NABIL/latest", &lv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if lv.Price == nil || lv.SMA.SMA200 == nil || lv.RSI == nil {
		t.Errorf("incomplete snapshot: %+v", lv)
	}
	if lv.Signals.Recommendation != model.Buy || lv.Signals.Score != 65 {
		t.Errorf("signals: %+v", lv.Signals)
	}
}

func TestLatestWeeklyAndBadInterval(t *testing.T) {
	srv, _ := newTestServer(t)

	var lv model.LatestValues
	resp := getJSON(t, srv.URL+"/api/stocks/NABIL/latest?interval=weekly", &lv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weekly status %d", resp.StatusCode)
	}
	if lv.SMA.SMA20 == nil || lv.SMA.SMA50 != nil {
		t.Error("weekly bars over 250 days should give SMA20 but not SMA50")
	}

	var body map[string]string
	resp = getJSON(t, srv.URL+"/api/stocks/NABIL/latest?interval=hourly", &body)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body["error"], "invalid interval") {
		t.Errorf("status %d body %v", resp.StatusCode, body)
	}
}

func TestUnknownSymbolIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/latest", "/indicators", "/signals", "/prices", "/overview"} {
		var body map[string]string
		resp := getJSON(t, srv.URL+"/api/stocks/GHOST"+path, &body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestIndicatorsAndSignals(t *testing.T) {
	srv, _ := newTestServer(t)

	var set model.IndicatorSet
	getJSON(t, srv.URL+"/api/stocks/NABIL/indicators", &set)
	if len(set.SMA.SMA20) != 231 || len(set.RSI) != 236 {
		t.Errorf("series lengths: sma20=%d rsi=%d", len(set.SMA.SMA20), len(set.RSI))
	}

	var sig model.RecommendationResult
	getJSON(t, srv.URL+"/api/stocks/NABIL/signals", &sig)
	if sig.Recommendation != model.Buy || sig.Signals.Trend == nil || *sig.Signals.Trend != model.TrendStrongBullish {
		t.Errorf("signals: %+v", sig)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestHealth(t *testing.T) {
	svc := analysis.NewService(store.NewMemoryStore(), nil)
	s := NewServer(svc, nil)
	s.Checks["store"] = okPinger{}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status: %d", rec.Code)
	}

	s.Checks["redis"] = failingPinger{}
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "degraded") {
		t.Errorf("degraded: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv.URL+"/api/stocks/NABIL/signals", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "nepse_http_requests_total") {
		t.Error("request counter not exposed")
	}
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/stocks", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("preflight: %d %v", resp.StatusCode, resp.Header)
	}
}

func TestMovers(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.SaveStock(ctx, model.Stock{Symbol: "NTC"})
	st.SavePrices(ctx, "NTC", []model.PriceBar{
		{Date: day0.AddDate(0, 0, -1), Open: 900, High: 900, Low: 900, Close: 900},
		{Date: day0, Open: 880, High: 880, Low: 880, Close: 880},
	})

	var mv struct {
		Gainers []struct {
			Symbol string `json:"symbol"`
		} `json:"gainers"`
		Losers []struct {
			Symbol        string  `json:"symbol"`
			ChangePercent float64 `json:"change_percent"`
		} `json:"losers"`
	}
	resp := getJSON(t, srv.URL+"/api/market/movers?limit=3", &mv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if len(mv.Gainers) != 1 || mv.Gainers[0].Symbol != "NABIL" {
		t.Errorf("gainers: %+v", mv.Gainers)
	}
	if len(mv.Losers) != 1 || mv.Losers[0].Symbol != "NTC" || mv.Losers[0].ChangePercent >= 0 {
		t.Errorf("losers: %+v", mv.Losers)
	}

	if resp := getJSON(t, srv.URL+"/api/market/movers?limit=abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit: status %d", resp.StatusCode)
	}
}
