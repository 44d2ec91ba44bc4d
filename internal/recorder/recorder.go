package recorder

import (
	"time"

	"NepseAnalyzer/internal/model"
)

// SnapshotRecord is one computed recommendation for a symbol.
type SnapshotRecord struct {
	RunID          string
	Symbol         string
	Interval       string // "daily" or "weekly"
	BarDate        time.Time
	Price          float64
	RSI            *float64
	MACDHistogram  *float64
	ATR            *float64
	Score          int
	Recommendation model.Recommendation
	Trend          string
}

// NewSnapshotRecord flattens a LatestValues snapshot for storage.
func NewSnapshotRecord(runID, symbol, interval string, lv *model.LatestValues) *SnapshotRecord {
	rec := &SnapshotRecord{
		RunID:          runID,
		Symbol:         symbol,
		Interval:       interval,
		RSI:            lv.RSI,
		MACDHistogram:  lv.MACD.Histogram,
		ATR:            lv.ATR,
		Score:          lv.Signals.Score,
		Recommendation: lv.Signals.Recommendation,
	}
	if lv.Price != nil {
		rec.BarDate = lv.Price.Date
		rec.Price = lv.Price.Close
	}
	if lv.Signals.Signals.Trend != nil {
		rec.Trend = string(*lv.Signals.Signals.Trend)
	}
	return rec
}

// RefreshRecord summarises one bulk refresh run.
type RefreshRecord struct {
	RunID    string
	Source   string
	Symbols  int
	Updated  int
	Failed   int
	Started  time.Time
	Finished time.Time
}

// Recorder persists recommendation history for later analysis.
type Recorder interface {
	RecordSnapshot(rec *SnapshotRecord) error
	RecordRefresh(rec *RefreshRecord) error
	// LastRecommendation returns the most recent daily recommendation
	// recorded for symbol.
	LastRecommendation(symbol string) (model.Recommendation, bool, error)
	Close() error
}
