package store

import (
	"context"
	"sync"
	"time"

	"NepseAnalyzer/internal/model"
)

// MemoryStore is an in-process Store. All reads and writes copy.
type MemoryStore struct {
	mu          sync.RWMutex
	prices      map[string][]model.PriceBar
	stocks      map[string]model.Stock
	lastUpdated time.Time
	hasUpdated  bool
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prices: make(map[string][]model.PriceBar),
		stocks: make(map[string]model.Stock),
	}
}

func (s *MemoryStore) SavePrices(_ context.Context, symbol string, bars []model.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[NormalizeSymbol(symbol)] = sortedCopy(bars)
	return nil
}

func (s *MemoryStore) GetPrices(_ context.Context, symbol string) (model.PriceSeries, error) {
	symbol = NormalizeSymbol(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.prices[symbol]
	bars := make([]model.PriceBar, len(stored))
	copy(bars, stored)
	return model.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func (s *MemoryStore) HasPrices(_ context.Context, symbol string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prices[NormalizeSymbol(symbol)]) > 0, nil
}

func (s *MemoryStore) SaveStocks(_ context.Context, stocks []model.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range stocks {
		st.Symbol = NormalizeSymbol(st.Symbol)
		s.stocks[st.Symbol] = st
	}
	return nil
}

func (s *MemoryStore) SaveStock(ctx context.Context, stock model.Stock) error {
	return s.SaveStocks(ctx, []model.Stock{stock})
}

func (s *MemoryStore) GetStocks(_ context.Context) ([]model.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Stock, 0, len(s.stocks))
	for _, st := range s.stocks {
		out = append(out, st)
	}
	sortStocks(out)
	return out, nil
}

func (s *MemoryStore) GetStock(_ context.Context, symbol string) (model.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stocks[NormalizeSymbol(symbol)]
	if !ok {
		return model.Stock{}, ErrNotFound
	}
	return st, nil
}

func (s *MemoryStore) HasStocks(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stocks) > 0, nil
}

func (s *MemoryStore) LastUpdated(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated, s.hasUpdated, nil
}

func (s *MemoryStore) SetLastUpdated(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = t
	s.hasUpdated = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = make(map[string][]model.PriceBar)
	s.stocks = make(map[string]model.Stock)
	s.lastUpdated = time.Time{}
	s.hasUpdated = false
	return nil
}

func (s *MemoryStore) Close() error { return nil }
