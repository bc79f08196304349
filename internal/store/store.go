// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"database/sql"
	"time"

	"hype-hunter/internal/models"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, letting
// row-level operations run standalone or inside a ledger transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Transact runs fn inside a single transaction, committing on nil and
	// rolling back on error.
	Transact(ctx context.Context, fn func(q DBTX) error) error

	// Portfolio rows
	PositionBy(ctx context.Context, q DBTX, ticker string) (*models.Position, error)
	OpenPositions(ctx context.Context) ([]models.Position, error)
	AllPositions(ctx context.Context, q DBTX) ([]models.Position, error)
	InsertPosition(ctx context.Context, q DBTX, p *models.Position) error
	UpdatePosition(ctx context.Context, q DBTX, p *models.Position) error
	DeletePosition(ctx context.Context, q DBTX, id int64) error

	// Journal
	AppendTrade(ctx context.Context, q DBTX, rec *models.TradeRecord) error
	Journal(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)

	// Price-bar cache
	SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
	BarsFreshness(ctx context.Context, symbol string) (time.Time, error)

	// Watchlist
	AddToWatchlist(ctx context.Context, symbol, listName string) error
	RemoveFromWatchlist(ctx context.Context, symbol, listName string) error
	GetWatchlist(ctx context.Context, listName string) ([]string, error)

	// Lifecycle
	Seed(ctx context.Context, cashSymbol string, startingBalance float64) error
	Close() error
}

// TradeFilter represents filters for querying the trade journal.
type TradeFilter struct {
	Ticker    string
	Action    models.TradeAction
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
