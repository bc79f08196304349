package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hype-hunter/internal/config"
	"hype-hunter/internal/discovery"
	"hype-hunter/internal/ledger"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/metrics"
	"hype-hunter/internal/scanner"
	"hype-hunter/internal/sentiment"
	"hype-hunter/internal/store"
	"hype-hunter/internal/verdict"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	Ledger    *ledger.Ledger
	Engine    *metrics.Engine
	Scanner   *scanner.Scanner
	Discovery *discovery.Engine
	Sentiment *sentiment.Client
	News      scanner.NewsSource
	Grader    *verdict.Grader
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Engine = metrics.NewEngine(metrics.Config{
		ATRPeriod:       cfg.Risk.ATRPeriod,
		IntradayRVOL:    cfg.Scan.IntradayRVOL,
		SessionOpenMin:  cfg.SessionOpenMinutes(),
		SessionCloseMin: cfg.SessionCloseMinutes(),
		Location:        cfg.Location(),
	})

	dataStore, err := store.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, ledger commands unavailable")
	} else {
		app.Store = dataStore
		app.Ledger = ledger.New(dataStore, cfg.Market.CashSymbol, logger)
		logger.Debug().Msg("SQLite store initialized")
	}

	if cfg.Credentials.Tiingo.APIKey != "" {
		tiingo := scanner.NewTiingoClient(cfg.Credentials.Tiingo.APIKey, logger)
		app.News = tiingo
		app.Scanner = scanner.New(tiingo, app.Engine, app.Store, cfg.Scan.LookbackDays, logger)
		logger.Debug().Msg("Tiingo client initialized")
	}

	app.Discovery = discovery.NewEngine(logger)
	app.Sentiment = sentiment.NewClient(logger)

	if cfg.Credentials.OpenAI.APIKey != "" {
		app.Grader = verdict.NewGrader(cfg.Credentials.OpenAI.APIKey, cfg.Credentials.OpenAI.Model, logger)
		logger.Debug().Str("model", cfg.Credentials.OpenAI.Model).Msg("OpenAI grader initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "hunter",
		Short: "Hype Hunter - momentum scanner and paper-trading ledger",
		Long: `Hype Hunter scouts market movers, scores their volume and velocity,
grades the narrative with an LLM, sizes positions off an ATR stop, and keeps
a paper-trading ledger in a local SQLite store.

Use 'hunter help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if app.Store != nil {
				return app.Store.Seed(cmd.Context(), app.Ledger.CashSymbol(), cfg.Market.StartingBalance)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/hype-hunter)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addScanCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)
	addWatchlistCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Hype Hunter v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir()})
			} else {
				output.Println(app.Config.Dir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Market")
	output.Printf("  Session:          %s-%s %s\n", cfg.Market.SessionOpen, cfg.Market.SessionClose, cfg.Market.Timezone)
	output.Printf("  Cash symbol:      %s\n", cfg.Market.CashSymbol)
	output.Printf("  Starting balance: %.2f\n", cfg.Market.StartingBalance)
	output.Println()
	output.Bold("Scan")
	output.Printf("  Min RVOL:         %.2f\n", cfg.Scan.MinRVOL)
	output.Printf("  Lookback days:    %d\n", cfg.Scan.LookbackDays)
	output.Printf("  Intraday RVOL:    %v\n", cfg.Scan.IntradayRVOL)
	output.Println()
	output.Bold("Risk")
	output.Printf("  Account size:     %.2f\n", cfg.Risk.AccountSize)
	output.Printf("  Risk percent:     %.2f%%\n", cfg.Risk.RiskPercent)
	output.Printf("  ATR multiplier:   %.1f\n", cfg.Risk.ATRMultiplier)
	output.Printf("  ATR period:       %d\n", cfg.Risk.ATRPeriod)
}
