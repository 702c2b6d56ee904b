package collector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
)

// CachedFetcher keeps recently fetched daily bars in a SQLite database and
// collapses concurrent fetches of the same symbol into one upstream call.
type CachedFetcher struct {
	next    Fetcher
	db      *sql.DB
	ttl     time.Duration
	metrics *metrics.Metrics

	mu  sync.Mutex
	sf  singleflight.Group
	now func() time.Time
}

// NewCachedFetcher opens (or creates) the cache database and runs migrations.
func NewCachedFetcher(next Fetcher, dbPath string, ttl time.Duration, m *metrics.Metrics) (*CachedFetcher, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &CachedFetcher{next: next, db: db, ttl: ttl, metrics: m, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Dur("ttl", ttl).Msg("bar cache opened")
	return c, nil
}

func (c *CachedFetcher) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			symbol     TEXT    NOT NULL,
			lookback   INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, lookback)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol   TEXT    NOT NULL,
			lookback INTEGER NOT NULL,
			ts       INTEGER NOT NULL,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   REAL,
			PRIMARY KEY (symbol, lookback, ts)
		)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *CachedFetcher) Name() string { return "cache+" + c.next.Name() }

// FetchDailyBars serves the series from the cache when it is younger than the TTL.
// Concurrent callers share one upstream fetch, which runs detached from any
// single caller's cancellation; each caller still returns when its own context ends.
func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, error) {
	key := fmt.Sprintf("%s|%d", symbol, lookback)
	flightCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		if series, ok := c.load(flightCtx, symbol, lookback); ok {
			c.metrics.ObserveCache(true)
			return series, nil
		}
		c.metrics.ObserveCache(false)

		start := time.Now()
		series, err := c.next.FetchDailyBars(flightCtx, symbol, lookback)
		c.metrics.ObserveFetch(c.next.Name(), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if err := c.store(flightCtx, series); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache write failed")
		}
		return series, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.PriceSeries), nil
	}
}

func (c *CachedFetcher) load(ctx context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, bool) {
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM fetches WHERE symbol = ? AND lookback = ?`,
		symbol, int(lookback)).Scan(&fetchedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache lookup failed")
		}
		return nil, false
	}
	at := time.Unix(fetchedAt, 0)
	if c.now().Sub(at) >= c.ttl {
		return nil, false
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM daily_bars
		 WHERE symbol = ? AND lookback = ? ORDER BY ts`,
		symbol, int(lookback))
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
		return nil, false
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var b model.OHLCV
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache scan failed")
			return nil, false
		}
		b.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	if rows.Err() != nil || len(bars) == 0 {
		return nil, false
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, Lookback: lookback, FetchedAt: at}, true
}

func (c *CachedFetcher) store(ctx context.Context, series *model.PriceSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_bars WHERE symbol = ? AND lookback = ?`,
		series.Symbol, int(series.Lookback)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_bars
		(symbol, lookback, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx, series.Symbol, int(series.Lookback), b.Time.Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fetches (symbol, lookback, fetched_at) VALUES (?,?,?)
		ON CONFLICT(symbol, lookback) DO UPDATE SET fetched_at = excluded.fetched_at`,
		series.Symbol, int(series.Lookback), c.now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// Close releases the database.
func (c *CachedFetcher) Close() error {
	log.Info().Msg("closing bar cache")
	return c.db.Close()
}
