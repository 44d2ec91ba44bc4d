package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/store"
)

// DefaultHistoryDays is one year of calendar days.
const DefaultHistoryDays = 365

// Progress reports the state of a bulk refresh.
type Progress struct {
	Percent int
	Message string
}

// RefreshResult summarises a bulk refresh.
type RefreshResult struct {
	StocksUpdated int
	PricesUpdated int
	Failed        map[string]error
}

// Collector fetches price history and listings and writes them to a store.
type Collector struct {
	Fetcher     Fetcher
	Store       store.Store
	HistoryDays int
	// Delay is the pause between symbols in a bulk refresh.
	Delay time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st store.Store) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Store:       st,
		HistoryDays: DefaultHistoryDays,
		Delay:       100 * time.Millisecond,
	}
}

// RefreshSymbol fetches the symbol's history and replaces the stored series.
// An empty fetch leaves the stored series untouched.
func (c *Collector) RefreshSymbol(ctx context.Context, symbol string) (int, error) {
	symbol = store.NormalizeSymbol(symbol)
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return 0, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("%s: no bars returned by %s", symbol, c.Fetcher.Name())
	}
	if err := c.Store.SavePrices(ctx, symbol, bars); err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}

	if cf, ok := c.Fetcher.(CompanyFetcher); ok {
		if _, err := c.Store.GetStock(ctx, symbol); errors.Is(err, store.ErrNotFound) {
			if st, err := cf.FetchCompany(ctx, symbol); err != nil {
				log.Printf("[WARN] company info for %s: %v", symbol, err)
			} else if err := c.Store.SaveStock(ctx, st); err != nil {
				log.Printf("[WARN] save company %s: %v", symbol, err)
			}
		}
	}

	log.Printf("[INFO] refreshed %s: %d bars from %s", symbol, len(bars), c.Fetcher.Name())
	return len(bars), nil
}

// EnsurePrices refreshes symbol only when the store holds no bars for it.
func (c *Collector) EnsurePrices(ctx context.Context, symbol string) (bool, error) {
	ok, err := c.Store.HasPrices(ctx, symbol)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if _, err := c.RefreshSymbol(ctx, symbol); err != nil {
		return false, err
	}
	return true, nil
}

// RefreshStocks replaces the listing metadata and stamps the update time.
func (c *Collector) RefreshStocks(ctx context.Context) ([]model.Stock, error) {
	lister, ok := c.Fetcher.(StockLister)
	if !ok {
		return nil, fmt.Errorf("source %s cannot list stocks", c.Fetcher.Name())
	}
	stocks, err := lister.FetchStocks(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Store.SaveStocks(ctx, stocks); err != nil {
		return nil, fmt.Errorf("save stocks: %w", err)
	}
	if err := c.Store.SetLastUpdated(ctx, time.Now()); err != nil {
		return nil, fmt.Errorf("set last updated: %w", err)
	}
	log.Printf("[INFO] refreshed %d stocks from %s", len(stocks), c.Fetcher.Name())
	return stocks, nil
}

// StocksStale reports whether the listing is missing or older than maxAge.
func (c *Collector) StocksStale(ctx context.Context, maxAge time.Duration) (bool, error) {
	t, ok, err := c.Store.LastUpdated(ctx)
	if err != nil {
		return false, err
	}
	return !ok || time.Since(t) > maxAge, nil
}

// RefreshAll refreshes every symbol given, or the full listing when symbols
// is empty. Per-symbol failures are collected rather than aborting.
func (c *Collector) RefreshAll(ctx context.Context, symbols []string, progress func(Progress)) (*RefreshResult, error) {
	report := func(pct int, format string, args ...interface{}) {
		if progress != nil {
			progress(Progress{Percent: pct, Message: fmt.Sprintf(format, args...)})
		}
	}
	res := &RefreshResult{Failed: make(map[string]error)}

	if len(symbols) == 0 {
		report(0, "Fetching stock symbols...")
		stocks, err := c.RefreshStocks(ctx)
		if err != nil {
			return res, fmt.Errorf("refresh stocks: %w", err)
		}
		res.StocksUpdated = len(stocks)
		for _, st := range stocks {
			symbols = append(symbols, st.Symbol)
		}
		report(20, "Saved %d stock symbols.", len(stocks))
	}

	total := len(symbols)
	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		report(20+i*80/total, "Fetching price history for %s (%d/%d)...", sym, i+1, total)
		if _, err := c.RefreshSymbol(ctx, sym); err != nil {
			log.Printf("[ERROR] refresh %s: %v", sym, err)
			res.Failed[sym] = err
		} else {
			res.PricesUpdated++
		}
		if c.Delay > 0 && i < total-1 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(c.Delay):
			}
		}
	}

	report(100, "Update complete. Updated %d stocks and %d price histories.", res.StocksUpdated, res.PricesUpdated)
	return res, nil
}
