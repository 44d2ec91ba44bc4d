package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"NepseAnalyzer/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while refreshes write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recommendation_history (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			run_id         TEXT,
			symbol         TEXT NOT NULL,
			interval       TEXT NOT NULL,
			bar_date       TEXT,
			price          REAL,
			rsi            REAL,
			macd_histogram REAL,
			atr            REAL,
			score          INTEGER,
			recommendation TEXT,
			trend          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rec_symbol_ts ON recommendation_history(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS refresh_runs (
			run_id      TEXT PRIMARY KEY,
			source      TEXT,
			symbols     INTEGER,
			updated     INTEGER,
			failed      INTEGER,
			started_at  INTEGER,
			finished_at INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(rec *SnapshotRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var barDate string
	if !rec.BarDate.IsZero() {
		barDate = rec.BarDate.Format("2006-01-02")
	}
	_, err := r.db.Exec(`INSERT INTO recommendation_history
		(timestamp, run_id, symbol, interval, bar_date, price, rsi, macd_histogram, atr,
		 score, recommendation, trend)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().UnixNano(), rec.RunID, rec.Symbol, rec.Interval, barDate, rec.Price,
		rec.RSI, rec.MACDHistogram, rec.ATR,
		rec.Score, string(rec.Recommendation), rec.Trend,
	)
	return err
}

func (r *SQLiteRecorder) RecordRefresh(rec *RefreshRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO refresh_runs
		(run_id, source, symbols, updated, failed, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?)`,
		rec.RunID, rec.Source, rec.Symbols, rec.Updated, rec.Failed,
		rec.Started.Unix(), rec.Finished.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) LastRecommendation(symbol string) (model.Recommendation, bool, error) {
	var rec string
	err := r.db.QueryRow(`SELECT recommendation FROM recommendation_history
		WHERE symbol = ? AND interval = 'daily'
		ORDER BY timestamp DESC, id DESC LIMIT 1`, symbol).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("last recommendation %s: %w", symbol, err)
	}
	return model.Recommendation(rec), true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
