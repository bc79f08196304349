// Package integration provides end-to-end tests for the hunt workflow.
package integration

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hype-hunter/internal/ledger"
	"hype-hunter/internal/metrics"
	"hype-hunter/internal/models"
	"hype-hunter/internal/scanner"
	"hype-hunter/internal/store"
)

// tiingoStub serves a fixed daily-price history for any symbol, with the
// latest bar's volume controlled per symbol.
func tiingoStub(t *testing.T, latestVolumes map[string]int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /tiingo/daily/{symbol}/prices
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 {
			http.NotFound(w, r)
			return
		}
		symbol := parts[3]
		latest, ok := latestVolumes[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}

		fmt.Fprint(w, "[")
		base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 25; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			vol := int64(1_000_000)
			if i == 24 {
				vol = latest
			}
			fmt.Fprintf(w, `{"date":%q,"open":49,"high":51,"low":48,"close":50,"volume":%d}`,
				base.AddDate(0, 0, i).Format(time.RFC3339), vol)
		}
		fmt.Fprint(w, "]")
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestHuntWorkflow drives the full pipeline: scan candidates against a
// stubbed price feed, size the best hit off its ATR stop, execute the buy in
// the ledger, then exit and check the books balance.
func TestHuntWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv := tiingoStub(t, map[string]int64{
		"HYPE": 4_000_000,
		"DUD":  900_000,
	})

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "hunt.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()
	if err := st.Seed(ctx, "CASH", 10000); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	engine := metrics.NewEngine(metrics.DefaultConfig())
	tiingo := scanner.NewTiingoClientForBase(srv.URL, "test-key", zerolog.Nop())
	scan := scanner.New(tiingo, engine, st, 40, zerolog.Nop())
	book := ledger.New(st, "CASH", zerolog.Nop())

	// Scan: HYPE trades 4x its trailing average, DUD stays quiet.
	result, err := scan.Scan(ctx, []string{"HYPE", "DUD", "GONE"}, 2.0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].Ticker != "HYPE" {
		t.Fatalf("hits = %+v, want only HYPE", result.Hits)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "GONE" {
		t.Fatalf("skipped = %v, want [GONE]", result.Skipped)
	}

	// The scan populated the local bar cache.
	cached, err := st.GetBars(ctx, "HYPE",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || len(cached) != 25 {
		t.Fatalf("cached bars = %d (%v), want 25", len(cached), err)
	}

	// Size the position: 1% of 10k risked against a 2-ATR stop. Bars have a
	// constant true range of 3, so stop = 50 - 6 = 44 and shares =
	// floor(100/6) = 16.
	plan, err := engine.ComputeATRRisk("HYPE", cached, 10000, 1.0, 2.0)
	if err != nil {
		t.Fatalf("ComputeATRRisk: %v", err)
	}
	if plan.Shares != 16 {
		t.Fatalf("shares = %d, want 16", plan.Shares)
	}
	if math.Abs(plan.StopPrice-44) > 1e-9 {
		t.Fatalf("stop = %v, want 44", plan.StopPrice)
	}

	// Execute the entry at the scanned price.
	price := result.Hits[0].Price
	if _, err := book.ExecuteBuy(ctx, "HYPE", price, float64(plan.Shares), "hype scan"); err != nil {
		t.Fatalf("ExecuteBuy: %v", err)
	}

	summary, err := book.EquitySummary(ctx)
	if err != nil {
		t.Fatalf("EquitySummary: %v", err)
	}
	wantCash := 10000 - price*float64(plan.Shares)
	if math.Abs(summary.Cash-wantCash) > 1e-6 {
		t.Errorf("cash = %v, want %v", summary.Cash, wantCash)
	}
	if math.Abs(summary.TotalEquity-10000) > 1e-6 {
		t.Errorf("equity = %v, want 10000 at cost", summary.TotalEquity)
	}

	// Exit 10% higher and verify realized P&L and the journal trail.
	exit := price * 1.1
	rec, err := book.ExecuteSell(ctx, "HYPE", exit, 0, "target")
	if err != nil {
		t.Fatalf("ExecuteSell: %v", err)
	}
	if rec.Action != models.ActionSell {
		t.Errorf("action = %s, want SELL", rec.Action)
	}
	wantPnL := (exit - price) * float64(plan.Shares)
	if math.Abs(rec.PnLAbs-wantPnL) > 1e-6 {
		t.Errorf("pnl = %v, want %v", rec.PnLAbs, wantPnL)
	}

	journal, err := book.Journal(ctx, 0)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(journal) != 2 || journal[0].Action != models.ActionSell || journal[1].Action != models.ActionBuy {
		t.Errorf("journal = %+v, want SELL then BUY", journal)
	}

	stats, err := book.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Exits != 1 || stats.Wins != 1 {
		t.Errorf("stats = %+v, want one winning exit", stats)
	}
}
