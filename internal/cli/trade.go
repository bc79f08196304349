package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hype-hunter/pkg/utils"
)

// addTradeCommands adds the ledger mutation commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newDepositCmd(app))
}

func requireLedger(app *App) error {
	if app.Ledger == nil {
		return fmt.Errorf("ledger unavailable: store failed to initialize")
	}
	return nil
}

func newBuyCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "buy <ticker> <price> <quantity>",
		Short: "Record a paper buy",
		Long:  "Debits cash and opens or averages into a position. Fails if cash cannot cover the order.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad price %q: %w", args[1], err)
			}
			qty, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("bad quantity %q: %w", args[2], err)
			}

			rec, err := app.Ledger.ExecuteBuy(cmd.Context(), args[0], price, qty, reason)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rec)
			}
			output.Success("Bought %s %s @ %s (%s)",
				utils.FormatQuantity(int64(rec.Quantity)), rec.Ticker,
				utils.FormatCurrency(rec.EntryPrice),
				utils.FormatCurrency(rec.EntryPrice*rec.Quantity))
			return printCash(output, app, cmd)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "journal note for the trade")
	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	var (
		reason string
		qty    float64
	)

	cmd := &cobra.Command{
		Use:   "sell <ticker> <price>",
		Short: "Record a paper sell",
		Long:  "Credits cash and reduces or closes a position. Without --qty the whole position is sold.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad price %q: %w", args[1], err)
			}

			rec, err := app.Ledger.ExecuteSell(cmd.Context(), args[0], price, qty, reason)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rec)
			}
			pnl := utils.FormatPnL(rec.PnLAbs)
			output.Success("%s %s %s @ %s, P&L %s (%s)",
				rec.Action,
				utils.FormatQuantity(int64(rec.Quantity)), rec.Ticker,
				utils.FormatCurrency(rec.ExitPrice),
				output.SignedPnL(rec.PnLAbs, pnl),
				utils.FormatPercent(rec.PnLPct))
			return printCash(output, app, cmd)
		},
	}

	cmd.Flags().Float64Var(&qty, "qty", 0, "shares to sell (default: entire position)")
	cmd.Flags().StringVar(&reason, "reason", "", "journal note for the trade")
	return cmd
}

func newDepositCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit cash into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireLedger(app); err != nil {
				return err
			}

			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("bad amount %q: %w", args[0], err)
			}

			rec, err := app.Ledger.DepositCash(cmd.Context(), amount, reason)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rec)
			}
			output.Success("Deposited %s", utils.FormatCurrency(rec.Quantity))
			return printCash(output, app, cmd)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "journal note for the deposit")
	return cmd
}

func printCash(output *Output, app *App, cmd *cobra.Command) error {
	summary, err := app.Ledger.EquitySummary(cmd.Context())
	if err != nil {
		return err
	}
	output.Dim("Cash: %s  Invested: %s  Equity: %s",
		utils.FormatCurrency(summary.Cash),
		utils.FormatCurrency(summary.Invested),
		utils.FormatCurrency(summary.TotalEquity))
	return nil
}
