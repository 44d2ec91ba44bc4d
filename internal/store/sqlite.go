package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"NepseAnalyzer/internal/model"
)

const (
	dateLayout        = "2006-01-02"
	settingLastUpdate = "stocksLastUpdated"
)

// SQLiteStore persists prices and listings in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_symbol ON prices(symbol)`,

		`CREATE TABLE IF NOT EXISTS stocks (
			symbol       TEXT PRIMARY KEY,
			company_name TEXT,
			sector       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SavePrices(ctx context.Context, symbol string, bars []model.PriceBar) error {
	symbol = NormalizeSymbol(symbol)
	bars = sortedCopy(bars)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("delete prices %s: %w", symbol, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prices
		(symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date.Format(dateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert %s %s: %w", symbol, b.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetPrices(ctx context.Context, symbol string) (model.PriceSeries, error) {
	symbol = NormalizeSymbol(symbol)
	series := model.PriceSeries{Symbol: symbol, Bars: []model.PriceBar{}}

	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM prices WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return series, fmt.Errorf("query prices %s: %w", symbol, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date string
			b    model.PriceBar
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return series, fmt.Errorf("scan price: %w", err)
		}
		b.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return series, fmt.Errorf("parse date %q: %w", date, err)
		}
		series.Bars = append(series.Bars, b)
	}
	return series, rows.Err()
}

func (s *SQLiteStore) HasPrices(ctx context.Context, symbol string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices WHERE symbol = ?`,
		NormalizeSymbol(symbol)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count prices: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) SaveStocks(ctx context.Context, stocks []model.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, st := range stocks {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO stocks
			(symbol, company_name, sector) VALUES (?,?,?)`,
			NormalizeSymbol(st.Symbol), st.CompanyName, st.Sector); err != nil {
			return fmt.Errorf("upsert stock %s: %w", st.Symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveStock(ctx context.Context, stock model.Stock) error {
	return s.SaveStocks(ctx, []model.Stock{stock})
}

func (s *SQLiteStore) GetStocks(ctx context.Context) ([]model.Stock, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, company_name, sector
		FROM stocks ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	out := []model.Stock{}
	for rows.Next() {
		var st model.Stock
		if err := rows.Scan(&st.Symbol, &st.CompanyName, &st.Sector); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetStock(ctx context.Context, symbol string) (model.Stock, error) {
	var st model.Stock
	err := s.db.QueryRowContext(ctx, `SELECT symbol, company_name, sector
		FROM stocks WHERE symbol = ?`, NormalizeSymbol(symbol)).
		Scan(&st.Symbol, &st.CompanyName, &st.Sector)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stock{}, ErrNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("get stock %s: %w", symbol, err)
	}
	return st, nil
}

func (s *SQLiteStore) HasStocks(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stocks`).Scan(&n); err != nil {
		return false, fmt.Errorf("count stocks: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`,
		settingLastUpdate).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read %s: %w", settingLastUpdate, err)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", settingLastUpdate, err)
	}
	return t, true, nil
}

func (s *SQLiteStore) SetLastUpdated(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?,?)`,
		settingLastUpdate, t.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"prices", "stocks", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("[INFO] sqlite store cleared")
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
