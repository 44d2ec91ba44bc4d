// Package analysis serves indicator snapshots for stored symbols, refreshing
// price history on demand and caching computed results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"NepseAnalyzer/internal/cache"
	"NepseAnalyzer/internal/collector"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/recorder"
	"NepseAnalyzer/internal/snapshot"
	"NepseAnalyzer/internal/store"
)

var (
	// ErrNoData is returned when no price history exists for a symbol.
	ErrNoData = errors.New("no price data")
	// ErrBadInterval is returned for an interval other than daily or weekly.
	ErrBadInterval = errors.New("invalid interval")
	// ErrBadLimit is returned for a non-numeric or negative result limit.
	ErrBadLimit = errors.New("invalid limit")
)

// Interval selects the bar resolution indicators are computed on.
type Interval string

const (
	Daily  Interval = "daily"
	Weekly Interval = "weekly"
)

// ParseInterval accepts "", "daily" and "weekly".
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "daily", "1d":
		return Daily, nil
	case "weekly", "1w":
		return Weekly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadInterval, s)
	}
}

const (
	DefaultCacheTTL   = 15 * time.Minute
	DefaultListingTTL = 24 * time.Hour
)

// Service computes snapshots on top of a Store.
type Service struct {
	Store     store.Store
	Collector *collector.Collector // nil disables on-demand refresh
	Cache     cache.Cache          // nil disables caching
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics // nil disables instrumentation
	CacheTTL  time.Duration
	// ListingTTL is how old the stock listing may get before Stocks refreshes it.
	ListingTTL time.Duration
}

// NewService creates a Service with default TTLs and a noop recorder.
func NewService(st store.Store, c *collector.Collector) *Service {
	return &Service{
		Store:      st,
		Collector:  c,
		Recorder:   recorder.NewNoopRecorder(),
		CacheTTL:   DefaultCacheTTL,
		ListingTTL: DefaultListingTTL,
	}
}

// Series loads the stored bars of symbol at the given interval, fetching
// history first if none is stored.
func (s *Service) Series(ctx context.Context, symbol string, interval Interval) (model.PriceSeries, error) {
	symbol = store.NormalizeSymbol(symbol)
	if s.Collector != nil {
		refreshed, err := s.Collector.EnsurePrices(ctx, symbol)
		s.countRefresh(refreshed || err != nil, err)
		if err != nil {
			log.Printf("[WARN] on-demand refresh %s: %v", symbol, err)
		}
	}

	series, err := s.Store.GetPrices(ctx, symbol)
	if err != nil {
		return series, fmt.Errorf("load prices %s: %w", symbol, err)
	}
	if len(series.Bars) == 0 {
		return series, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	if interval == Weekly {
		series.Bars = collector.AggregateDailyToWeekly(series.Bars)
	}
	return series, nil
}

// Indicators returns every indicator series for symbol.
func (s *Service) Indicators(ctx context.Context, symbol string, interval Interval) (*model.IndicatorSet, error) {
	symbol = store.NormalizeSymbol(symbol)
	key := cacheKey(symbol, interval, "indicators")

	var set model.IndicatorSet
	if s.cacheGet(ctx, key, &set) {
		return &set, nil
	}

	series, err := s.Series(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}
	out := s.compute(series.Bars)
	s.cacheSet(ctx, key, out)
	return out, nil
}

// Latest returns the latest-values snapshot for symbol. Freshly computed
// snapshots are written to the recommendation history.
func (s *Service) Latest(ctx context.Context, symbol string, interval Interval) (*model.LatestValues, error) {
	symbol = store.NormalizeSymbol(symbol)
	key := cacheKey(symbol, interval, "latest")

	var lv model.LatestValues
	if s.cacheGet(ctx, key, &lv) {
		return &lv, nil
	}

	series, err := s.Series(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}
	out := snapshot.Project(series.Bars, s.compute(series.Bars))
	s.cacheSet(ctx, key, out)

	rec := recorder.NewSnapshotRecord(uuid.NewString(), symbol, string(interval), out)
	if err := s.Recorder.RecordSnapshot(rec); err != nil {
		log.Printf("[WARN] record snapshot %s: %v", symbol, err)
	}
	return out, nil
}

// Signals returns the daily recommendation for symbol.
func (s *Service) Signals(ctx context.Context, symbol string) (model.RecommendationResult, error) {
	lv, err := s.Latest(ctx, symbol, Daily)
	if err != nil {
		return model.RecommendationResult{}, err
	}
	return lv.Signals, nil
}

// Overview returns price change and 52-week range for symbol.
func (s *Service) Overview(ctx context.Context, symbol string) (*snapshot.Overview, error) {
	series, err := s.Series(ctx, symbol, Daily)
	if err != nil {
		return nil, err
	}
	return snapshot.NewOverview(series), nil
}

// ParseLimit parses a result limit; empty means 0, the caller's default.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadLimit, s)
	}
	return n, nil
}

// Movers ranks the stored daily series of every listed stock by their latest
// percent change. It reads the store only and never fetches.
func (s *Service) Movers(ctx context.Context, limit int) (snapshot.Movers, error) {
	stocks, err := s.Store.GetStocks(ctx)
	if err != nil {
		return snapshot.Movers{}, fmt.Errorf("load stocks: %w", err)
	}
	series := make([]model.PriceSeries, 0, len(stocks))
	for _, st := range stocks {
		ps, err := s.Store.GetPrices(ctx, st.Symbol)
		if err != nil {
			return snapshot.Movers{}, fmt.Errorf("load prices %s: %w", st.Symbol, err)
		}
		series = append(series, ps)
	}
	return snapshot.RankMovers(series, limit), nil
}

// Prices returns the stored daily bars of symbol.
func (s *Service) Prices(ctx context.Context, symbol string) (model.PriceSeries, error) {
	return s.Series(ctx, symbol, Daily)
}

// Stocks returns the stock listing, refreshing it when missing or stale.
func (s *Service) Stocks(ctx context.Context) ([]model.Stock, error) {
	if s.Collector != nil {
		stale, err := s.Collector.StocksStale(ctx, s.ListingTTL)
		if err != nil {
			log.Printf("[WARN] listing age: %v", err)
		}
		if stale {
			if _, err := s.Collector.RefreshStocks(ctx); err != nil {
				log.Printf("[WARN] refresh listing: %v", err)
			}
		}
	}
	return s.Store.GetStocks(ctx)
}

// Refresh refetches the given symbols (or the full listing) and drops their
// cached snapshots.
func (s *Service) Refresh(ctx context.Context, symbols []string, progress func(collector.Progress)) (*collector.RefreshResult, error) {
	if s.Collector == nil {
		return nil, errors.New("no collector configured")
	}
	runID := uuid.NewString()
	started := time.Now()
	log.Printf("[INFO] refresh run %s started (%d symbols)", runID, len(symbols))

	res, err := s.Collector.RefreshAll(ctx, symbols, progress)
	if res != nil {
		for _, ferr := range res.Failed {
			s.countRefresh(true, ferr)
		}
		for i := 0; i < res.PricesUpdated; i++ {
			s.countRefresh(true, nil)
		}
		for _, sym := range symbols {
			s.invalidate(ctx, sym)
		}
		if len(symbols) == 0 && s.Cache != nil {
			if err := s.Cache.DeletePrefix(ctx, ""); err != nil {
				log.Printf("[WARN] cache flush: %v", err)
			}
		}

		rec := &recorder.RefreshRecord{
			RunID:    runID,
			Source:   s.Collector.Fetcher.Name(),
			Symbols:  res.PricesUpdated + len(res.Failed),
			Updated:  res.PricesUpdated,
			Failed:   len(res.Failed),
			Started:  started,
			Finished: time.Now(),
		}
		if rerr := s.Recorder.RecordRefresh(rec); rerr != nil {
			log.Printf("[WARN] record refresh %s: %v", runID, rerr)
		}
		log.Printf("[INFO] refresh run %s finished: %d updated, %d failed", runID, res.PricesUpdated, len(res.Failed))
	}
	return res, err
}

func (s *Service) compute(bars []model.PriceBar) *model.IndicatorSet {
	start := time.Now()
	set := snapshot.CalculateAll(bars)
	if s.Metrics != nil {
		s.Metrics.ComputeDur.Observe(time.Since(start).Seconds())
	}
	return set
}

func (s *Service) invalidate(ctx context.Context, symbol string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeletePrefix(ctx, store.NormalizeSymbol(symbol)+":"); err != nil {
		log.Printf("[WARN] cache invalidate %s: %v", symbol, err)
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if s.Cache == nil {
		return false
	}
	ok, err := s.Cache.Get(ctx, key, dst)
	if err != nil {
		log.Printf("[WARN] cache get %s: %v", key, err)
	}
	if s.Metrics != nil {
		if ok {
			s.Metrics.CacheHits.Inc()
		} else {
			s.Metrics.CacheMisses.Inc()
		}
	}
	return ok
}

func (s *Service) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, v, s.CacheTTL); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
}

func (s *Service) countRefresh(attempted bool, err error) {
	if s.Metrics == nil || !attempted || s.Collector == nil {
		return
	}
	source := s.Collector.Fetcher.Name()
	s.Metrics.RefreshTotal.WithLabelValues(source).Inc()
	if err != nil {
		s.Metrics.RefreshErrors.WithLabelValues(source).Inc()
	}
}

func cacheKey(symbol string, interval Interval, kind string) string {
	return symbol + ":" + string(interval) + ":" + kind
}
