package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const defaultWatchlist = "hype"

// addWatchlistCommands adds watchlist management commands.
func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watchlist management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <ticker>...",
		Short: "Add tickers to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			for _, t := range args {
				if err := app.Store.AddToWatchlist(cmd.Context(), strings.ToUpper(t), defaultWatchlist); err != nil {
					return err
				}
			}
			output.Success("Added %d ticker(s)", len(args))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <ticker>...",
		Short: "Remove tickers from the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			for _, t := range args {
				if err := app.Store.RemoveFromWatchlist(cmd.Context(), strings.ToUpper(t), defaultWatchlist); err != nil {
					return err
				}
			}
			output.Success("Removed %d ticker(s)", len(args))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			symbols, err := app.Store.GetWatchlist(cmd.Context(), defaultWatchlist)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(symbols)
			}
			if len(symbols) == 0 {
				output.Println("Watchlist is empty.")
				return nil
			}
			output.Println(strings.Join(symbols, " "))
			return nil
		},
	})

	rootCmd.AddCommand(cmd)
}
