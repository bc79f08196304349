package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"hype-hunter/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-user tool, but scans and ledger calls may overlap briefly.
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Portfolio table: open positions plus the reserved cash row
	CREATE TABLE IF NOT EXISTS portfolio (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		cost REAL NOT NULL DEFAULT 0,
		quantity REAL NOT NULL DEFAULT 0,
		target REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Open',
		date_acquired DATETIME NOT NULL
	);

	-- Journal table: append-only trade records
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		ticker TEXT NOT NULL,
		action TEXT NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		entry_price REAL NOT NULL DEFAULT 0,
		exit_price REAL NOT NULL DEFAULT 0,
		pnl_pct REAL NOT NULL DEFAULT 0,
		pnl_abs REAL NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT ''
	);

	-- Bars table: local cache of daily OHLCV history
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- Watchlist table
	CREATE TABLE IF NOT EXISTS watchlist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		list_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, list_name)
	);

	CREATE INDEX IF NOT EXISTS idx_portfolio_ticker ON portfolio(ticker);
	CREATE INDEX IF NOT EXISTS idx_journal_date ON journal(date);
	CREATE INDEX IF NOT EXISTS idx_journal_ticker ON journal(ticker);
	CREATE INDEX IF NOT EXISTS idx_bars_symbol ON bars(symbol);
	CREATE INDEX IF NOT EXISTS idx_watchlist_list ON watchlist(list_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Seed inserts the reserved cash row when the portfolio is entirely empty.
// Safe to call on every startup; at most one cash row ever exists.
func (s *SQLiteStore) Seed(ctx context.Context, cashSymbol string, startingBalance float64) error {
	return s.Transact(ctx, func(q DBTX) error {
		var count int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolio`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count portfolio rows: %w", err)
		}
		if count > 0 {
			return nil
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO portfolio (ticker, cost, quantity, target, status, date_acquired)
			VALUES (?, 1.0, ?, 0, ?, ?)
		`, cashSymbol, startingBalance, models.StatusLiquid, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed cash position: %w", err)
		}
		return nil
	})
}

// Transact runs fn inside a transaction.
func (s *SQLiteStore) Transact(ctx context.Context, fn func(q DBTX) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Portfolio Methods
// ============================================================================

const positionColumns = "id, ticker, cost, quantity, target, status, date_acquired"

// PositionBy returns the Position row for a ticker, or nil when none exists.
func (s *SQLiteStore) PositionBy(ctx context.Context, q DBTX, ticker string) (*models.Position, error) {
	if q == nil {
		q = s.db
	}
	var p models.Position
	err := q.QueryRowContext(ctx, `
		SELECT `+positionColumns+` FROM portfolio WHERE ticker = ? LIMIT 1
	`, ticker).Scan(&p.ID, &p.Ticker, &p.Cost, &p.Quantity, &p.Target, &p.Status, &p.DateAcquired)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// OpenPositions returns all positions with positive quantity, ordered by ticker.
func (s *SQLiteStore) OpenPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+positionColumns+` FROM portfolio WHERE quantity > 0 ORDER BY ticker ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// AllPositions returns every portfolio row, cash included.
func (s *SQLiteStore) AllPositions(ctx context.Context, q DBTX) ([]models.Position, error) {
	if q == nil {
		q = s.db
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+positionColumns+` FROM portfolio ORDER BY ticker ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

func scanPositions(rows *sql.Rows) ([]models.Position, error) {
	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Ticker, &p.Cost, &p.Quantity, &p.Target, &p.Status, &p.DateAcquired); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// InsertPosition inserts a new portfolio row and backfills its ID.
func (s *SQLiteStore) InsertPosition(ctx context.Context, q DBTX, p *models.Position) error {
	if q == nil {
		q = s.db
	}
	result, err := q.ExecContext(ctx, `
		INSERT INTO portfolio (ticker, cost, quantity, target, status, date_acquired)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Ticker, p.Cost, p.Quantity, p.Target, p.Status, p.DateAcquired)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	return nil
}

// UpdatePosition rewrites cost, quantity, and status for an existing row.
func (s *SQLiteStore) UpdatePosition(ctx context.Context, q DBTX, p *models.Position) error {
	if q == nil {
		q = s.db
	}
	result, err := q.ExecContext(ctx, `
		UPDATE portfolio SET cost = ?, quantity = ?, status = ? WHERE id = ?
	`, p.Cost, p.Quantity, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("position not found: %d", p.ID)
	}
	return nil
}

// DeletePosition removes a portfolio row. Fully sold positions are deleted,
// not zeroed.
func (s *SQLiteStore) DeletePosition(ctx context.Context, q DBTX, id int64) error {
	if q == nil {
		q = s.db
	}
	result, err := q.ExecContext(ctx, `DELETE FROM portfolio WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("position not found: %d", id)
	}
	return nil
}

// ============================================================================
// Journal Methods
// ============================================================================

// AppendTrade appends a journal record. Records are never updated or deleted.
func (s *SQLiteStore) AppendTrade(ctx context.Context, q DBTX, rec *models.TradeRecord) error {
	if q == nil {
		q = s.db
	}
	result, err := q.ExecContext(ctx, `
		INSERT INTO journal (date, ticker, action, quantity, entry_price, exit_price, pnl_pct, pnl_abs, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Date, rec.Ticker, rec.Action, rec.Quantity, rec.EntryPrice, rec.ExitPrice, rec.PnLPct, rec.PnLAbs, rec.Reason)
	if err != nil {
		return fmt.Errorf("failed to append trade record: %w", err)
	}
	rec.ID, _ = result.LastInsertId()
	return nil
}

// Journal retrieves trade records, most recent first.
func (s *SQLiteStore) Journal(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := "SELECT id, date, ticker, action, quantity, entry_price, exit_price, pnl_pct, pnl_abs, reason FROM journal WHERE 1=1"
	args := []interface{}{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Ticker, &r.Action, &r.Quantity, &r.EntryPrice, &r.ExitPrice, &r.PnLPct, &r.PnLAbs, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// ============================================================================
// Bars Methods
// ============================================================================

// SaveBars saves daily bars to the local cache.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBars retrieves cached bars for a symbol, ordered ascending by date.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, b)
	}

	return bars, rows.Err()
}

// BarsFreshness returns the date of the most recent cached bar for a symbol.
func (s *SQLiteStore) BarsFreshness(ctx context.Context, symbol string) (time.Time, error) {
	// Select the column directly so the driver keeps its DATETIME type.
	var date time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT date FROM bars WHERE symbol = ? ORDER BY date DESC LIMIT 1
	`, symbol).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get bars freshness: %w", err)
	}
	return date, nil
}

// ============================================================================
// Watchlist Methods
// ============================================================================

// AddToWatchlist adds a symbol to a watchlist.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, symbol, listName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO watchlist (symbol, list_name) VALUES (?, ?)
	`, symbol, listName)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// RemoveFromWatchlist removes a symbol from a watchlist.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, symbol, listName string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE symbol = ? AND list_name = ?
	`, symbol, listName)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// GetWatchlist retrieves symbols in a watchlist.
func (s *SQLiteStore) GetWatchlist(ctx context.Context, listName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol FROM watchlist WHERE list_name = ? ORDER BY created_at ASC
	`, listName)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Ensure SQLiteStore implements DataStore
var _ DataStore = (*SQLiteStore)(nil)
