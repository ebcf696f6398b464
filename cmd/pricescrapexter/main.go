// cmd/pricescrapexter/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valpere/PriceScrapexter/internal/config"
	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	verbose    bool

	cfg    *config.Config
	logger *utils.ZapLogger
)

var rootCmd = &cobra.Command{
	Use:   "pricescrapexter",
	Short: "Competitor price scraper",
	Long: `Scrapes competitor product pages for prices using CSS selectors,
currency patterns, JSON-LD and meta tags, and exports the results.

Examples:
  # Serve the HTTP API
  pricescrapexter serve --config config.yaml

  # Scrape a catalog CSV into a spreadsheet
  pricescrapexter scrape catalog.csv -o prices.xlsx

  # Show what the heuristics see on one page
  pricescrapexter extract https://shop.example/item --debug`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}

		c, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if logFormat != "" {
			c.Log.Format = logFormat
		}
		cfg = c

		l, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		if configFile == "" {
			logger.Debug("no config file given, using defaults")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or console")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show technical error details")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err, verbose))
		os.Exit(errors.ExitCode(err))
	}
}
