// Package store persists daily price bars and stock listings per symbol.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"NepseAnalyzer/internal/model"
)

// ErrNotFound is returned when a requested stock is not stored.
var ErrNotFound = errors.New("not found")

// Store persists price history and listing metadata.
type Store interface {
	// SavePrices replaces every stored bar of symbol with bars.
	SavePrices(ctx context.Context, symbol string, bars []model.PriceBar) error
	// GetPrices returns the stored bars of symbol ascending by date.
	GetPrices(ctx context.Context, symbol string) (model.PriceSeries, error)
	HasPrices(ctx context.Context, symbol string) (bool, error)

	SaveStocks(ctx context.Context, stocks []model.Stock) error
	SaveStock(ctx context.Context, stock model.Stock) error
	GetStocks(ctx context.Context) ([]model.Stock, error)
	GetStock(ctx context.Context, symbol string) (model.Stock, error)
	HasStocks(ctx context.Context) (bool, error)

	// LastUpdated reports when the stock listing was last refreshed.
	LastUpdated(ctx context.Context) (time.Time, bool, error)
	SetLastUpdated(ctx context.Context, t time.Time) error

	// Clear removes all prices, stocks and settings.
	Clear(ctx context.Context) error
	Close() error
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// sortedCopy returns bars normalised to UTC days, ascending by date, with
// later duplicates of a date winning.
func sortedCopy(bars []model.PriceBar) []model.PriceBar {
	byDay := make(map[time.Time]int, len(bars))
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		b.Date = model.Day(b.Date)
		if i, ok := byDay[b.Date]; ok {
			out[i] = b
			continue
		}
		byDay[b.Date] = len(out)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortStocks(stocks []model.Stock) {
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Symbol < stocks[j].Symbol })
}
