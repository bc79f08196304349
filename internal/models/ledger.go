package models

import "time"

// TradeAction represents the action recorded in the journal.
type TradeAction string

const (
	ActionBuy     TradeAction = "BUY"
	ActionSell    TradeAction = "SELL"
	ActionTrim    TradeAction = "TRIM"
	ActionDeposit TradeAction = "DEPOSIT"
)

// PositionStatus represents the lifecycle state of a portfolio row.
type PositionStatus string

const (
	StatusOpen    PositionStatus = "Open"
	StatusTrimmed PositionStatus = "Trimmed"
	// StatusLiquid marks the reserved cash row.
	StatusLiquid PositionStatus = "Liquid"
)

// Position is a portfolio row. One ticker has at most one open row; the
// reserved cash symbol is itself a Position whose quantity is the balance.
type Position struct {
	ID           int64
	Ticker       string
	Cost         float64
	Quantity     float64
	Target       float64
	Status       PositionStatus
	DateAcquired time.Time
}

// Value returns cost basis times quantity.
func (p Position) Value() float64 {
	return p.Cost * p.Quantity
}

// TradeRecord is an append-only journal entry. Never mutated after creation.
type TradeRecord struct {
	ID         int64
	Date       time.Time
	Ticker     string
	Action     TradeAction
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	PnLPct     float64
	PnLAbs     float64
	Reason     string
}

// EquitySummary is a read-only snapshot of the ledger's value.
type EquitySummary struct {
	Cash        float64
	Invested    float64
	TotalEquity float64
}
