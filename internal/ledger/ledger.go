// Package ledger implements the portfolio ledger: buy/sell/trim/deposit
// execution against a reserved cash position, weighted-average cost
// tracking, and an append-only trade journal. Every mutating operation runs
// as a single SQLite transaction; a failed operation leaves the ledger
// byte-for-byte unchanged.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/models"
	"hype-hunter/internal/store"
)

// quantityEpsilon absorbs float drift when deciding a position is fully sold.
const quantityEpsilon = 1e-9

// Ledger executes paper trades against the portfolio store.
type Ledger struct {
	store      store.DataStore
	cashSymbol string
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a Ledger. cashSymbol is the single reserved ticker whose
// quantity is the cash balance.
func New(ds store.DataStore, cashSymbol string, logger zerolog.Logger) *Ledger {
	return &Ledger{
		store:      ds,
		cashSymbol: strings.ToUpper(cashSymbol),
		logger:     logger,
		now:        time.Now,
	}
}

// CashSymbol returns the reserved cash ticker.
func (l *Ledger) CashSymbol() string {
	return l.cashSymbol
}

// ExecuteBuy debits cash and opens or averages into a position. Fails with
// ErrInsufficientFunds, leaving the ledger unchanged, when cash cannot cover
// price*quantity.
func (l *Ledger) ExecuteBuy(ctx context.Context, ticker string, price, quantity float64, reason string) (*models.TradeRecord, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := l.validateOrder(ticker, price, quantity); err != nil {
		return nil, err
	}

	var rec *models.TradeRecord
	err := l.store.Transact(ctx, func(q store.DBTX) error {
		cash, err := l.cashPosition(ctx, q)
		if err != nil {
			return err
		}

		cost := price * quantity
		if cash.Quantity < cost {
			return apperrors.NewLedgerError(ticker, string(models.ActionBuy),
				"cash cannot cover order", apperrors.ErrInsufficientFunds)
		}

		cash.Quantity -= cost
		if err := l.store.UpdatePosition(ctx, q, cash); err != nil {
			return err
		}

		pos, err := l.store.PositionBy(ctx, q, ticker)
		if err != nil {
			return err
		}
		if pos == nil {
			pos = &models.Position{
				Ticker:       ticker,
				Cost:         price,
				Quantity:     quantity,
				Status:       models.StatusOpen,
				DateAcquired: l.now(),
			}
			if err := l.store.InsertPosition(ctx, q, pos); err != nil {
				return err
			}
		} else {
			// Weighted-average cost across the old lot and the new fill.
			total := pos.Quantity + quantity
			pos.Cost = (pos.Cost*pos.Quantity + price*quantity) / total
			pos.Quantity = total
			pos.Status = models.StatusOpen
			if err := l.store.UpdatePosition(ctx, q, pos); err != nil {
				return err
			}
		}

		rec = &models.TradeRecord{
			Date:       l.now(),
			Ticker:     ticker,
			Action:     models.ActionBuy,
			Quantity:   quantity,
			EntryPrice: price,
			Reason:     reason,
		}
		return l.store.AppendTrade(ctx, q, rec)
	})
	if err != nil {
		return nil, err
	}

	logging.LogTrade(l.logger, ticker, string(models.ActionBuy), quantity, price)
	return rec, nil
}

// ExecuteSell credits cash and reduces or closes a position. A quantity of 0
// (or less) sells the entire position; an oversized quantity is clamped to
// the held quantity, never oversold. Fully sold positions are deleted.
func (l *Ledger) ExecuteSell(ctx context.Context, ticker string, price, quantity float64, reason string) (*models.TradeRecord, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || ticker == l.cashSymbol {
		return nil, apperrors.NewValidationError("ticker", ticker, "not a tradeable symbol")
	}
	if price <= 0 {
		return nil, apperrors.NewValidationError("price", price, "must be positive")
	}

	var rec *models.TradeRecord
	err := l.store.Transact(ctx, func(q store.DBTX) error {
		pos, err := l.store.PositionBy(ctx, q, ticker)
		if err != nil {
			return err
		}
		if pos == nil || pos.Quantity <= 0 {
			return apperrors.NewLedgerError(ticker, string(models.ActionSell),
				"nothing held", apperrors.ErrNoPosition)
		}

		sellQty := quantity
		if sellQty <= 0 || sellQty > pos.Quantity {
			sellQty = pos.Quantity
		}

		pnlAbs := (price - pos.Cost) * sellQty
		var pnlPct float64
		if pos.Cost != 0 {
			pnlPct = (price - pos.Cost) / pos.Cost * 100
		}

		cash, err := l.cashPosition(ctx, q)
		if err != nil {
			return err
		}
		cash.Quantity += price * sellQty
		if err := l.store.UpdatePosition(ctx, q, cash); err != nil {
			return err
		}

		action := models.ActionSell
		remaining := pos.Quantity - sellQty
		if remaining <= quantityEpsilon {
			if err := l.store.DeletePosition(ctx, q, pos.ID); err != nil {
				return err
			}
		} else {
			action = models.ActionTrim
			pos.Quantity = remaining
			pos.Status = models.StatusTrimmed
			if err := l.store.UpdatePosition(ctx, q, pos); err != nil {
				return err
			}
		}

		rec = &models.TradeRecord{
			Date:       l.now(),
			Ticker:     ticker,
			Action:     action,
			Quantity:   sellQty,
			EntryPrice: pos.Cost,
			ExitPrice:  price,
			PnLPct:     pnlPct,
			PnLAbs:     pnlAbs,
			Reason:     reason,
		}
		return l.store.AppendTrade(ctx, q, rec)
	})
	if err != nil {
		return nil, err
	}

	logging.LogTrade(l.logger, ticker, string(rec.Action), rec.Quantity, price)
	return rec, nil
}

// DepositCash credits the cash position. Deposits go through the same
// transactional path as trades and land in the journal; the store is never
// written around the ledger.
func (l *Ledger) DepositCash(ctx context.Context, amount float64, reason string) (*models.TradeRecord, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount", amount, "must be positive")
	}

	var rec *models.TradeRecord
	err := l.store.Transact(ctx, func(q store.DBTX) error {
		cash, err := l.store.PositionBy(ctx, q, l.cashSymbol)
		if err != nil {
			return err
		}
		if cash == nil {
			cash = &models.Position{
				Ticker:       l.cashSymbol,
				Cost:         1.0,
				Quantity:     amount,
				Status:       models.StatusLiquid,
				DateAcquired: l.now(),
			}
			if err := l.store.InsertPosition(ctx, q, cash); err != nil {
				return err
			}
		} else {
			cash.Quantity += amount
			if err := l.store.UpdatePosition(ctx, q, cash); err != nil {
				return err
			}
		}

		rec = &models.TradeRecord{
			Date:     l.now(),
			Ticker:   l.cashSymbol,
			Action:   models.ActionDeposit,
			Quantity: amount,
			Reason:   reason,
		}
		return l.store.AppendTrade(ctx, q, rec)
	})
	if err != nil {
		return nil, err
	}

	logging.LogTrade(l.logger, l.cashSymbol, string(models.ActionDeposit), amount, 1.0)
	return rec, nil
}

// EquitySummary returns cash, invested cost basis, and their sum. Read-only.
func (l *Ledger) EquitySummary(ctx context.Context) (*models.EquitySummary, error) {
	positions, err := l.store.AllPositions(ctx, nil)
	if err != nil {
		return nil, err
	}

	summary := &models.EquitySummary{}
	for _, p := range positions {
		if p.Ticker == l.cashSymbol {
			summary.Cash += p.Quantity
		} else {
			summary.Invested += p.Cost * p.Quantity
		}
	}
	summary.TotalEquity = summary.Cash + summary.Invested
	return summary, nil
}

// Positions returns the open non-cash positions, ordered by ticker.
func (l *Ledger) Positions(ctx context.Context) ([]models.Position, error) {
	all, err := l.store.OpenPositions(ctx)
	if err != nil {
		return nil, err
	}
	holdings := make([]models.Position, 0, len(all))
	for _, p := range all {
		if p.Ticker == l.cashSymbol {
			continue
		}
		holdings = append(holdings, p)
	}
	return holdings, nil
}

// Journal returns the most recent trade records, newest first. limit <= 0
// returns the full journal.
func (l *Ledger) Journal(ctx context.Context, limit int) ([]models.TradeRecord, error) {
	return l.store.Journal(ctx, store.TradeFilter{Limit: limit})
}

// JournalStats summarizes realized performance from the trade journal.
type JournalStats struct {
	Trades   int     `json:"trades"`
	Exits    int     `json:"exits"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinRate  float64 `json:"win_rate"`
	TotalPnL float64 `json:"total_pnl"`
	BestPnL  float64 `json:"best_pnl"`
	WorstPnL float64 `json:"worst_pnl"`
}

// Stats computes realized performance over the whole journal. Only SELL and
// TRIM records carry P&L; buys and deposits count toward Trades only.
func (l *Ledger) Stats(ctx context.Context) (*JournalStats, error) {
	records, err := l.store.Journal(ctx, store.TradeFilter{})
	if err != nil {
		return nil, err
	}

	stats := &JournalStats{Trades: len(records)}
	for _, r := range records {
		if r.Action != models.ActionSell && r.Action != models.ActionTrim {
			continue
		}
		stats.Exits++
		stats.TotalPnL += r.PnLAbs
		if r.PnLAbs >= 0 {
			stats.Wins++
		} else {
			stats.Losses++
		}
		if r.PnLAbs > stats.BestPnL {
			stats.BestPnL = r.PnLAbs
		}
		if r.PnLAbs < stats.WorstPnL {
			stats.WorstPnL = r.PnLAbs
		}
	}
	if stats.Exits > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Exits) * 100
	}
	return stats, nil
}

func (l *Ledger) validateOrder(ticker string, price, quantity float64) error {
	if ticker == "" || ticker == l.cashSymbol {
		return apperrors.NewValidationError("ticker", ticker, "not a tradeable symbol")
	}
	if price <= 0 {
		return apperrors.NewValidationError("price", price, "must be positive")
	}
	if quantity <= 0 {
		return apperrors.NewValidationError("quantity", quantity, "must be positive")
	}
	return nil
}

// cashPosition loads the reserved cash row, which Seed guarantees exists.
func (l *Ledger) cashPosition(ctx context.Context, q store.DBTX) (*models.Position, error) {
	cash, err := l.store.PositionBy(ctx, q, l.cashSymbol)
	if err != nil {
		return nil, err
	}
	if cash == nil {
		return nil, apperrors.NewLedgerError(l.cashSymbol, "READ",
			"cash position missing; store not seeded", apperrors.ErrDatabaseError)
	}
	return cash, nil
}
