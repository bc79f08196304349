package cli

import (
	"github.com/spf13/cobra"

	"hype-hunter/pkg/utils"
)

// addPortfolioCommands adds the ledger read commands.
func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Realized performance from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			stats, err := app.Ledger.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			output.Bold("Journal performance")
			output.Printf("  Records:   %d\n", stats.Trades)
			output.Printf("  Exits:     %d (%d wins, %d losses)\n", stats.Exits, stats.Wins, stats.Losses)
			output.Printf("  Win rate:  %.1f%%\n", stats.WinRate)
			output.Printf("  Total P&L: %s\n", output.SignedPnL(stats.TotalPnL, utils.FormatPnL(stats.TotalPnL)))
			output.Printf("  Best:      %s\n", utils.FormatPnL(stats.BestPnL))
			output.Printf("  Worst:     %s\n", utils.FormatPnL(stats.WorstPnL))
			return nil
		},
	}
}

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show open positions and equity",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			positions, err := app.Ledger.Positions(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := app.Ledger.EquitySummary(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"positions": positions,
					"summary":   summary,
				})
			}

			if len(positions) == 0 {
				output.Println("No open positions.")
			} else {
				output.Printf("%-8s %12s %12s %14s %-8s %s\n",
					"TICKER", "QUANTITY", "COST", "VALUE", "STATUS", "ACQUIRED")
				for _, p := range positions {
					output.Printf("%-8s %12.2f %12s %14s %-8s %s\n",
						p.Ticker,
						p.Quantity,
						utils.FormatCurrency(p.Cost),
						utils.FormatCurrency(p.Value()),
						p.Status,
						p.DateAcquired.Format("2006-01-02"))
				}
			}

			output.Println()
			output.Bold("Cash: %s  Invested: %s  Total equity: %s",
				utils.FormatCurrency(summary.Cash),
				utils.FormatCurrency(summary.Invested),
				utils.FormatCurrency(summary.TotalEquity))
			return nil
		},
	}
}

func newJournalCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the trade journal, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			records, err := app.Ledger.Journal(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			if len(records) == 0 {
				output.Println("Journal is empty.")
				return nil
			}

			output.Printf("%-20s %-8s %-8s %10s %10s %10s %10s %s\n",
				"DATE", "TICKER", "ACTION", "QTY", "ENTRY", "EXIT", "P&L", "REASON")
			for _, r := range records {
				pnl := utils.FormatPnL(r.PnLAbs)
				output.Printf("%-20s %-8s %-8s %10.2f %10.2f %10.2f %10s %s\n",
					r.Date.Format("2006-01-02 15:04"),
					r.Ticker,
					r.Action,
					r.Quantity,
					r.EntryPrice,
					r.ExitPrice,
					output.SignedPnL(r.PnLAbs, pnl),
					r.Reason)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "max records to show (0 for all)")
	return cmd
}
