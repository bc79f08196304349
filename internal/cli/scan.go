package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hype-hunter/internal/models"
	"hype-hunter/pkg/utils"
)

// addScanCommands adds the discovery and scan commands.
func addScanCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newDiscoverCmd(app))
}

func newDiscoverCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List today's market movers",
		Long:  "Pulls day-gainer and most-active screeners and prints the candidate tickers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			movers, err := app.Discovery.MarketMovers(cmd.Context(), app.Config.Scan.ScreenerCount)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(movers)
			}
			output.Bold("Market movers (%d)", len(movers))
			output.Println(strings.Join(movers, " "))
			return nil
		},
	}
}

func newScanCmd(app *App) *cobra.Command {
	var (
		minRVOL float64
		tickers []string
	)

	cmd := &cobra.Command{
		Use:   "scan [tickers...]",
		Short: "Scan for hype candidates",
		Long: `Computes relative volume, gap, and velocity for each candidate and keeps
those at or above the RVOL threshold. With no arguments the candidate list
comes from the market-mover screeners.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Scanner == nil {
				return fmt.Errorf("tiingo api key not configured; run 'hunter config path'")
			}

			symbols := args
			if len(symbols) == 0 {
				symbols = tickers
			}
			if len(symbols) == 0 {
				var err error
				symbols, err = app.Discovery.MarketMovers(cmd.Context(), app.Config.Scan.ScreenerCount)
				if err != nil {
					return err
				}
			}
			if minRVOL <= 0 {
				minRVOL = app.Config.Scan.MinRVOL
			}

			result, err := app.Scanner.Scan(cmd.Context(), symbols, minRVOL)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Scanned %d symbols, %d hits (min RVOL %.2f)", result.Scanned, len(result.Hits), minRVOL)
			output.Dim("Market: %s", utils.GetMarketStatus(time.Now()))
			if len(result.Skipped) > 0 {
				output.Dim("Skipped (no data): %s", strings.Join(result.Skipped, " "))
			}
			if len(result.Hits) == 0 {
				output.Println("No hype today.")
				return nil
			}

			output.Printf("%-8s %10s %8s %8s %8s %6s %10s\n",
				"TICKER", "PRICE", "RVOL", "GAP%", "ROC5%", "9EMA", "VOLUME")
			for _, m := range result.Hits {
				printMetricsRow(output, &m)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minRVOL, "min-rvol", 0, "relative volume threshold (default from config)")
	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "explicit candidate tickers")
	return cmd
}

func printMetricsRow(output *Output, m *models.HypeMetrics) {
	ema := "below"
	if m.Above9EMA {
		ema = "above"
	}
	output.Printf("%-8s %10s %8s %8s %8s %6s %10s\n",
		m.Ticker,
		utils.FormatCurrency(m.Price),
		utils.FormatRVOL(m.RVOL),
		utils.FormatPercent(m.GapPct),
		utils.FormatPercent(m.ROC5),
		ema,
		utils.FormatVolume(m.Volume))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var withVerdict bool

	cmd := &cobra.Command{
		Use:   "analyze <ticker>",
		Short: "Full hype analysis for one ticker",
		Long: `Computes hype metrics, pulls recent headlines and Reddit chatter, and
optionally asks the LLM to grade the narrative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Scanner == nil {
				return fmt.Errorf("tiingo api key not configured")
			}
			ticker := strings.ToUpper(args[0])

			m, err := app.Scanner.Metrics(cmd.Context(), ticker)
			if err != nil {
				return err
			}

			var news []models.NewsItem
			if app.News != nil {
				if items, err := app.News.News(cmd.Context(), ticker, 5); err == nil {
					news = items
				} else {
					app.Logger.Warn().Err(err).Msg("News fetch failed")
				}
			}

			sent, err := app.Sentiment.TickerSentiment(cmd.Context(), ticker)
			if err != nil {
				app.Logger.Warn().Err(err).Msg("Sentiment fetch failed")
				sent = &models.SentimentSnapshot{Ticker: ticker}
			}

			var v *models.Verdict
			if withVerdict {
				if app.Grader == nil {
					return fmt.Errorf("openai api key not configured")
				}
				v, err = app.Grader.Grade(cmd.Context(), m, news, sent)
				if err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"metrics":   m,
					"news":      news,
					"sentiment": sent,
					"verdict":   v,
				})
			}

			output.Bold("%s", ticker)
			printMetricsRow(output, m)
			if !utils.IsRegularSession(time.Now()) {
				output.Dim("Outside regular hours; RVOL uses the full prior session.")
			}
			output.Println()

			if sent.Trending {
				output.Info("Reddit: rank #%d, %d mentions, %d upvotes", sent.Rank, sent.Mentions, sent.Upvotes)
			} else {
				output.Dim("Reddit: not trending")
			}

			if len(news) > 0 {
				output.Println()
				output.Bold("Headlines")
				for _, n := range news {
					output.Printf("  %s (%s)\n", n.Title, n.Source)
				}
			}

			if v != nil {
				output.Println()
				output.Bold("Verdict: %s / tier %s / score %d", v.Action, v.Tier, v.HypeScore)
				output.Println(v.Thesis)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withVerdict, "verdict", false, "ask the LLM to grade the narrative")
	return cmd
}

func newRiskCmd(app *App) *cobra.Command {
	var (
		accountSize   float64
		riskPercent   float64
		atrMultiplier float64
	)

	cmd := &cobra.Command{
		Use:   "risk <ticker>",
		Short: "Size a position off an ATR stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Scanner == nil {
				return fmt.Errorf("tiingo api key not configured")
			}
			ticker := strings.ToUpper(args[0])

			if accountSize <= 0 {
				accountSize = app.Config.Risk.AccountSize
			}
			if riskPercent <= 0 {
				riskPercent = app.Config.Risk.RiskPercent
			}
			if atrMultiplier <= 0 {
				atrMultiplier = app.Config.Risk.ATRMultiplier
			}

			bars, err := app.Scanner.Bars(cmd.Context(), ticker)
			if err != nil {
				return err
			}
			plan, err := app.Engine.ComputeATRRisk(ticker, bars, accountSize, riskPercent, atrMultiplier)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(plan)
			}

			output.Bold("%s risk plan", ticker)
			output.Printf("  Price:            %s\n", utils.FormatCurrency(plan.Price))
			output.Printf("  ATR:              %.2f\n", plan.ATR)
			output.Printf("  Stop:             %s\n", utils.FormatCurrency(plan.StopPrice))
			output.Printf("  Risk amount:      %s\n", utils.FormatCurrency(plan.RiskAmount))
			output.Printf("  Shares:           %d\n", plan.Shares)
			output.Printf("  Capital deployed: %s\n", utils.FormatCurrency(plan.CapitalDeployed))
			if plan.Shares == 0 {
				output.Warning("Stop sits at or above the price; no tradeable size.")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&accountSize, "account", 0, "account size (default from config)")
	cmd.Flags().Float64Var(&riskPercent, "risk", 0, "percent of account risked (default from config)")
	cmd.Flags().Float64Var(&atrMultiplier, "atr-mult", 0, "ATR stop multiplier (default from config)")
	return cmd
}
