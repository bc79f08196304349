package ledger

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/models"
	"hype-hunter/internal/store"
)

const startingBalance = 10000.0

func newTestLedger(t *testing.T) (*Ledger, store.DataStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.Seed(context.Background(), "CASH", startingBalance); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	return New(st, "CASH", zerolog.Nop()), st
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBuyAverageThenSellAll(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// First lot: 10 shares at 100.
	if _, err := l.ExecuteBuy(ctx, "AAPL", 100, 10, "breakout"); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	summary, err := l.EquitySummary(ctx)
	if err != nil {
		t.Fatalf("EquitySummary: %v", err)
	}
	if !almostEqual(summary.Cash, 9000) {
		t.Errorf("cash after first buy = %v, want 9000", summary.Cash)
	}

	// Second lot: 10 shares at 120 averages cost to 110.
	if _, err := l.ExecuteBuy(ctx, "AAPL", 120, 10, "add"); err != nil {
		t.Fatalf("second buy: %v", err)
	}
	positions, err := l.Positions(ctx)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	pos := positions[0]
	if !almostEqual(pos.Cost, 110) || !almostEqual(pos.Quantity, 20) {
		t.Errorf("position cost=%v qty=%v, want cost=110 qty=20", pos.Cost, pos.Quantity)
	}
	summary, _ = l.EquitySummary(ctx)
	if !almostEqual(summary.Cash, 7800) {
		t.Errorf("cash after second buy = %v, want 7800", summary.Cash)
	}
	if !almostEqual(summary.Invested, 2200) {
		t.Errorf("invested = %v, want 2200", summary.Invested)
	}
	if !almostEqual(summary.TotalEquity, 10000) {
		t.Errorf("total equity = %v, want 10000", summary.TotalEquity)
	}

	// Full exit at 150.
	rec, err := l.ExecuteSell(ctx, "AAPL", 150, 0, "target hit")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if rec.Action != models.ActionSell {
		t.Errorf("action = %s, want SELL", rec.Action)
	}
	if !almostEqual(rec.PnLAbs, 800) {
		t.Errorf("pnl abs = %v, want 800", rec.PnLAbs)
	}
	if math.Abs(rec.PnLPct-36.3636) > 0.001 {
		t.Errorf("pnl pct = %v, want ~36.36", rec.PnLPct)
	}

	summary, _ = l.EquitySummary(ctx)
	if !almostEqual(summary.Cash, 10800) {
		t.Errorf("cash after sell = %v, want 10800", summary.Cash)
	}
	positions, _ = l.Positions(ctx)
	if len(positions) != 0 {
		t.Errorf("positions after full sell = %d, want 0", len(positions))
	}
}

func TestBuyInsufficientFundsLeavesLedgerUnchanged(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.ExecuteBuy(ctx, "NVDA", 600, 100, "all in")
	if !apperrors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	summary, _ := l.EquitySummary(ctx)
	if !almostEqual(summary.Cash, startingBalance) {
		t.Errorf("cash = %v, want untouched %v", summary.Cash, startingBalance)
	}
	positions, _ := l.Positions(ctx)
	if len(positions) != 0 {
		t.Errorf("positions = %d, want 0", len(positions))
	}
	journal, _ := l.Journal(ctx, 0)
	if len(journal) != 0 {
		t.Errorf("journal = %d records, want 0", len(journal))
	}
}

func TestSellNoPosition(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.ExecuteSell(context.Background(), "TSLA", 200, 5, "")
	if !apperrors.Is(err, apperrors.ErrNoPosition) {
		t.Fatalf("err = %v, want ErrNoPosition", err)
	}
}

func TestPartialSellTrims(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ExecuteBuy(ctx, "AMD", 100, 10, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	rec, err := l.ExecuteSell(ctx, "AMD", 110, 4, "lock gains")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if rec.Action != models.ActionTrim {
		t.Errorf("action = %s, want TRIM", rec.Action)
	}
	if !almostEqual(rec.PnLAbs, 40) {
		t.Errorf("pnl abs = %v, want 40", rec.PnLAbs)
	}

	positions, _ := l.Positions(ctx)
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	if !almostEqual(positions[0].Quantity, 6) {
		t.Errorf("remaining qty = %v, want 6", positions[0].Quantity)
	}
	if positions[0].Status != models.StatusTrimmed {
		t.Errorf("status = %s, want Trimmed", positions[0].Status)
	}
	if !almostEqual(positions[0].Cost, 100) {
		t.Errorf("cost basis changed on trim: %v", positions[0].Cost)
	}
}

func TestOversellClampsToHeld(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ExecuteBuy(ctx, "PLTR", 20, 50, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	rec, err := l.ExecuteSell(ctx, "PLTR", 25, 500, "")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !almostEqual(rec.Quantity, 50) {
		t.Errorf("sold qty = %v, want clamp to 50", rec.Quantity)
	}
	if rec.Action != models.ActionSell {
		t.Errorf("action = %s, want SELL", rec.Action)
	}

	summary, _ := l.EquitySummary(ctx)
	if !almostEqual(summary.Cash, startingBalance-20*50+25*50) {
		t.Errorf("cash = %v", summary.Cash)
	}
}

func TestDepositCash(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	rec, err := l.DepositCash(ctx, 2500, "monthly top-up")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if rec.Action != models.ActionDeposit {
		t.Errorf("action = %s, want DEPOSIT", rec.Action)
	}

	summary, _ := l.EquitySummary(ctx)
	if !almostEqual(summary.Cash, 12500) {
		t.Errorf("cash = %v, want 12500", summary.Cash)
	}

	journal, _ := l.Journal(ctx, 0)
	if len(journal) != 1 || journal[0].Action != models.ActionDeposit {
		t.Errorf("journal = %+v, want single DEPOSIT record", journal)
	}
}

func TestOrderValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		ticker string
		price  float64
		qty    float64
	}{
		{"zero price", "AAPL", 0, 10},
		{"negative price", "AAPL", -5, 10},
		{"zero quantity", "AAPL", 100, 0},
		{"negative quantity", "AAPL", 100, -3},
		{"empty ticker", "", 100, 10},
		{"cash symbol", "CASH", 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ExecuteBuy(ctx, tt.ticker, tt.price, tt.qty, "")
			if !apperrors.Is(err, apperrors.ErrInvalidOrder) {
				t.Errorf("err = %v, want ErrInvalidOrder", err)
			}
		})
	}

	if _, err := l.DepositCash(ctx, -100, ""); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
		t.Errorf("negative deposit err = %v, want ErrInvalidOrder", err)
	}
}

func TestJournalNewestFirst(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ExecuteBuy(ctx, "AAPL", 100, 5, "first"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.ExecuteBuy(ctx, "MSFT", 200, 3, "second"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.ExecuteSell(ctx, "AAPL", 110, 0, "third"); err != nil {
		t.Fatalf("sell: %v", err)
	}

	journal, err := l.Journal(ctx, 0)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(journal) != 3 {
		t.Fatalf("journal = %d records, want 3", len(journal))
	}
	if journal[0].Reason != "third" || journal[2].Reason != "first" {
		t.Errorf("journal not newest first: %q ... %q", journal[0].Reason, journal[2].Reason)
	}

	limited, _ := l.Journal(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("limited journal = %d records, want 2", len(limited))
	}
}

func TestStats(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// One winner, one loser, one open position.
	if _, err := l.ExecuteBuy(ctx, "AAPL", 100, 10, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.ExecuteSell(ctx, "AAPL", 120, 0, ""); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, err := l.ExecuteBuy(ctx, "MSFT", 200, 5, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.ExecuteSell(ctx, "MSFT", 180, 0, ""); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, err := l.ExecuteBuy(ctx, "NVDA", 50, 10, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}

	stats, err := l.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Trades != 5 || stats.Exits != 2 {
		t.Errorf("trades=%d exits=%d, want 5/2", stats.Trades, stats.Exits)
	}
	if stats.Wins != 1 || stats.Losses != 1 {
		t.Errorf("wins=%d losses=%d, want 1/1", stats.Wins, stats.Losses)
	}
	if !almostEqual(stats.WinRate, 50) {
		t.Errorf("win rate = %v, want 50", stats.WinRate)
	}
	if !almostEqual(stats.TotalPnL, 100) { // +200 on AAPL, -100 on MSFT
		t.Errorf("total pnl = %v, want 100", stats.TotalPnL)
	}
	if !almostEqual(stats.BestPnL, 200) || !almostEqual(stats.WorstPnL, -100) {
		t.Errorf("best=%v worst=%v", stats.BestPnL, stats.WorstPnL)
	}
}

func TestTickerNormalization(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ExecuteBuy(ctx, " aapl ", 100, 10, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	positions, _ := l.Positions(ctx)
	if len(positions) != 1 || positions[0].Ticker != "AAPL" {
		t.Fatalf("positions = %+v, want single AAPL", positions)
	}
	if _, err := l.ExecuteSell(ctx, "aapl", 110, 0, ""); err != nil {
		t.Fatalf("sell with lowercase ticker: %v", err)
	}
}
