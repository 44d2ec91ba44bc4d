package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NepseAnalyzer/internal/model"
)

// ErrUnknownSource is returned by NewFetcher for an unrecognised source name.
var ErrUnknownSource = errors.New("unknown data source")

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}

// StockLister is implemented by fetchers that can list traded securities.
type StockLister interface {
	FetchStocks(ctx context.Context) ([]model.Stock, error)
}

// CompanyFetcher is implemented by fetchers that can describe one company.
type CompanyFetcher interface {
	FetchCompany(ctx context.Context, symbol string) (model.Stock, error)
}

// Options carries the credentials and endpoints NewFetcher may need.
type Options struct {
	NepseURL     string
	FallbackURL  string
	AlpacaKey    string
	AlpacaSecret string
	ProxyURL     string
}

// NewFetcher builds the fetcher for source: "nepse", "alpaca" or "mock".
func NewFetcher(source string, opts Options) (Fetcher, error) {
	switch strings.ToLower(source) {
	case "nepse", "":
		return NewNepseFetcher(opts.NepseURL, opts.FallbackURL, opts.ProxyURL), nil
	case "alpaca":
		if opts.AlpacaKey == "" || opts.AlpacaSecret == "" {
			return nil, errors.New("alpaca source requires api key and secret")
		}
		return NewAlpacaFetcher(opts.AlpacaKey, opts.AlpacaSecret), nil
	case "mock":
		return &MockFetcher{Price: 500}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}
