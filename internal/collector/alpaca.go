package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"NepseAnalyzer/internal/model"
)

// barsClient is the subset of the Alpaca market data client used here.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca daily bars. It serves
// dual-listed and development symbols when the NEPSE feed is unavailable.
type AlpacaFetcher struct {
	client barsClient
}

// NewAlpacaFetcher creates a fetcher backed by the Alpaca market data API.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := time.Now().UTC()
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.AddDate(0, 0, -days),
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}

	out := make([]model.PriceBar, len(bars))
	for i, b := range bars {
		out[i] = model.PriceBar{
			Date:   model.Day(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		}
	}
	return out, nil
}
