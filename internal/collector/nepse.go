package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"NepseAnalyzer/internal/model"
)

const (
	maxAttempts = 3
	retryDelay  = time.Second
)

// NepseFetcher implements Fetcher against a NEPSE-style JSON API exposing
// /stocks, /stocks/history and /company/{symbol}.
type NepseFetcher struct {
	BaseURL     string
	FallbackURL string
	Client      *http.Client
	RetryDelay  time.Duration
}

// NewNepseFetcher creates a new fetcher with optional proxy support.
func NewNepseFetcher(baseURL, fallbackURL, proxyURL string) *NepseFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &NepseFetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		FallbackURL: strings.TrimRight(fallbackURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		RetryDelay: retryDelay,
	}
}

func (f *NepseFetcher) Name() string { return "nepse" }

// number decodes JSON numbers and numeric strings such as "1,234.50".
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "null" || s == "-" {
		*n = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*n = number(d.InexactFloat64())
	return nil
}

// nepseBar covers both field spellings the upstream APIs use.
type nepseBar struct {
	BusinessDate string `json:"businessDate"`
	Date         string `json:"date"`
	OpenPrice    number `json:"openPrice"`
	Open         number `json:"open"`
	HighPrice    number `json:"highPrice"`
	High         number `json:"high"`
	LowPrice     number `json:"lowPrice"`
	Low          number `json:"low"`
	ClosePrice   number `json:"closePrice"`
	Close        number `json:"close"`
	Volume       number `json:"volume"`
	ShareTraded  number `json:"shareTraded"`
}

func firstNonZero(a, b number) float64 {
	if a != 0 {
		return float64(a)
	}
	return float64(b)
}

func (nb nepseBar) toPriceBar() (model.PriceBar, error) {
	raw := nb.BusinessDate
	if raw == "" {
		raw = nb.Date
	}
	date, err := parseDate(raw)
	if err != nil {
		return model.PriceBar{}, err
	}
	return model.PriceBar{
		Date:   date,
		Open:   firstNonZero(nb.OpenPrice, nb.Open),
		High:   firstNonZero(nb.HighPrice, nb.High),
		Low:    firstNonZero(nb.LowPrice, nb.Low),
		Close:  firstNonZero(nb.ClosePrice, nb.Close),
		Volume: int64(firstNonZero(nb.Volume, nb.ShareTraded)),
	}, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

type nepseStock struct {
	Symbol       string `json:"symbol"`
	StockSymbol  string `json:"stockSymbol"`
	SecurityName string `json:"securityName"`
	CompanyName  string `json:"companyName"`
	Sector       string `json:"sector"`
	SectorName   string `json:"sectorName"`
}

func (ns nepseStock) toStock() model.Stock {
	st := model.Stock{Symbol: ns.Symbol, CompanyName: ns.SecurityName, Sector: ns.Sector}
	if st.Symbol == "" {
		st.Symbol = ns.StockSymbol
	}
	if st.CompanyName == "" {
		st.CompanyName = ns.CompanyName
	}
	if st.Sector == "" {
		st.Sector = ns.SectorName
	}
	st.Symbol = strings.ToUpper(strings.TrimSpace(st.Symbol))
	return st
}

// FetchDailyBars fetches up to days calendar days of history ending today.
func (f *NepseFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", start.Format("2006-01-02"))
	q.Set("to", end.Format("2006-01-02"))

	var raw []nepseBar
	if err := f.getJSON(ctx, "/stocks/history?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}

	bars := make([]model.PriceBar, 0, len(raw))
	for _, nb := range raw {
		b, err := nb.toPriceBar()
		if err != nil {
			log.Printf("[WARN] skipping %s bar: %v", symbol, err)
			continue
		}
		bars = append(bars, b)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// FetchStocks lists every traded security.
func (f *NepseFetcher) FetchStocks(ctx context.Context) ([]model.Stock, error) {
	var raw []nepseStock
	if err := f.getJSON(ctx, "/stocks", &raw); err != nil {
		return nil, fmt.Errorf("fetch stocks: %w", err)
	}
	stocks := make([]model.Stock, 0, len(raw))
	for _, ns := range raw {
		st := ns.toStock()
		if st.Symbol == "" {
			continue
		}
		stocks = append(stocks, st)
	}
	return stocks, nil
}

// FetchCompany fetches the listing details of one symbol.
func (f *NepseFetcher) FetchCompany(ctx context.Context, symbol string) (model.Stock, error) {
	var ns nepseStock
	if err := f.getJSON(ctx, "/company/"+url.PathEscape(symbol), &ns); err != nil {
		return model.Stock{}, fmt.Errorf("fetch company %s: %w", symbol, err)
	}
	st := ns.toStock()
	if st.Symbol == "" {
		st.Symbol = strings.ToUpper(symbol)
	}
	return st, nil
}

// getJSON retries the primary base URL, then tries the fallback once.
func (f *NepseFetcher) getJSON(ctx context.Context, path string, out interface{}) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = f.getOnce(ctx, f.BaseURL+path, out); err == nil {
			return nil
		}
		if attempt < maxAttempts {
			log.Printf("[WARN] nepse request attempt %d/%d failed: %v", attempt, maxAttempts, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.RetryDelay * time.Duration(attempt)):
			}
		}
	}
	if f.FallbackURL == "" {
		return err
	}
	log.Printf("[WARN] nepse primary failed, trying fallback: %v", err)
	if ferr := f.getOnce(ctx, f.FallbackURL+path, out); ferr != nil {
		return fmt.Errorf("primary: %v; fallback: %w", err, ferr)
	}
	return nil
}

func (f *NepseFetcher) getOnce(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return decodeMaybeWrapped(body, out)
}

// decodeMaybeWrapped accepts either a bare payload or one wrapped as
// {"data": ...}.
func decodeMaybeWrapped(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Data) > 0 {
			trimmed = wrapper.Data
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
