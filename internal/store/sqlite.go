// Package store persists ingested prices and news behind the data-source
// interface. The chart itself never persists anything.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/source"
	_ "modernc.org/sqlite"
)

var _ source.Source = (*SQLite)(nil)

// SQLite stores price and news rows keyed by series.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA synchronous=NORMAL`} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	s := &SQLite{db: db, now: time.Now}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			series         TEXT NOT NULL,
			t_ms           INTEGER NOT NULL,
			price          REAL NOT NULL,
			source         TEXT NOT NULL,
			inserted_at_ms INTEGER NOT NULL,
			PRIMARY KEY(series, t_ms)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_series_t ON prices(series, t_ms)`,
		`CREATE TABLE IF NOT EXISTS news (
			id             TEXT PRIMARY KEY,
			series         TEXT NOT NULL,
			t_ms           INTEGER NOT NULL,
			category       TEXT NOT NULL,
			source         TEXT NOT NULL,
			title          TEXT NOT NULL,
			url            TEXT NOT NULL,
			inserted_at_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_series_t ON news(series, t_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_news_category ON news(category)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPrices inserts or replaces samples for series in one transaction.
func (s *SQLite) UpsertPrices(ctx context.Context, series, origin string, samples []chart.PriceSample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO prices(series, t_ms, price, source, inserted_at_ms)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare price upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	now := s.now().UnixMilli()
	for _, p := range samples {
		if _, err := stmt.ExecContext(ctx, series, p.T, p.P, origin, now); err != nil {
			return 0, fmt.Errorf("upsert price t=%d: %w", p.T, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prices: %w", err)
	}
	return len(samples), nil
}

// UpsertNews inserts or replaces events for series. Events without an id are
// stored under their resolved identity.
func (s *SQLite) UpsertNews(ctx context.Context, series string, events []chart.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO news(id, series, t_ms, category, source, title, url, inserted_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare news upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	now := s.now().UnixMilli()
	for _, ev := range events {
		id := chart.EventID(ev)
		if _, err := stmt.ExecContext(ctx, id, series, ev.T, chart.NormalizeCategory(ev.Category), ev.Source, ev.Title, ev.URL, now); err != nil {
			return 0, fmt.Errorf("upsert news %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit news: %w", err)
	}
	return len(events), nil
}

// Prices returns the range window of the price series, measured back from
// its latest sample, in ascending time order.
func (s *SQLite) Prices(ctx context.Context, q source.Query) ([]chart.PriceSample, error) {
	series := source.PriceSeries(q.Series)
	tMin, tMax, ok, err := s.window(ctx, "prices", q.Range, series)
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t_ms, price FROM prices
		WHERE series = ? AND t_ms BETWEEN ? AND ?
		ORDER BY t_ms ASC`, series, tMin, tMax)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []chart.PriceSample
	for rows.Next() {
		var p chart.PriceSample
		if err := rows.Scan(&p.T, &p.P); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// News returns the range window of news stored under the series. Futures
// news also includes headlines stored under the spot series.
func (s *SQLite) News(ctx context.Context, q source.Query) ([]chart.Event, error) {
	series := []string{q.Series}
	if alias := source.PriceSeries(q.Series); alias != q.Series {
		series = append(series, alias)
	}
	tMin, tMax, ok, err := s.window(ctx, "news", q.Range, series...)
	if err != nil || !ok {
		return nil, err
	}
	args := make([]any, 0, len(series)+2)
	for _, v := range series {
		args = append(args, v)
	}
	args = append(args, tMin, tMax)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, t_ms, category, source, title, url FROM news
		WHERE series IN (`+placeholders(len(series))+`) AND t_ms BETWEEN ? AND ?
		ORDER BY t_ms ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []chart.Event
	for rows.Next() {
		var ev chart.Event
		if err := rows.Scan(&ev.ID, &ev.T, &ev.Category, &ev.Source, &ev.Title, &ev.URL); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AllPrices returns every stored sample of series in time order.
func (s *SQLite) AllPrices(ctx context.Context, series string) ([]chart.PriceSample, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t_ms, price FROM prices WHERE series = ? ORDER BY t_ms ASC`, series)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []chart.PriceSample
	for rows.Next() {
		var p chart.PriceSample
		if err := rows.Scan(&p.T, &p.P); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Counts returns the stored row counts.
func (s *SQLite) Counts(ctx context.Context) (prices, news int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices`).Scan(&prices); err != nil {
		return 0, 0, fmt.Errorf("count prices: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&news); err != nil {
		return 0, 0, fmt.Errorf("count news: %w", err)
	}
	return prices, news, nil
}

func (s *SQLite) window(ctx context.Context, table, rng string, series ...string) (tMin, tMax int64, ok bool, err error) {
	var latest sql.NullInt64
	query := fmt.Sprintf(`SELECT MAX(t_ms) FROM %s WHERE series IN (%s)`, table, placeholders(len(series)))
	args := make([]any, len(series))
	for i, v := range series {
		args[i] = v
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&latest); err != nil {
		return 0, 0, false, fmt.Errorf("latest %s: %w", table, err)
	}
	if !latest.Valid {
		return 0, 0, false, nil
	}
	return latest.Int64 - source.RangeMillis(rng), latest.Int64, true, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
