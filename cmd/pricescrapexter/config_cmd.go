// cmd/pricescrapexter/config_cmd.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/PriceScrapexter/internal/config"
)

var templateType string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate or generate configuration files",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Configuration file '%s' is valid\n", args[0])
		if verbose {
			fmt.Fprintf(out, "  Listen address: %s\n", c.Server.Address)
			fmt.Fprintf(out, "  Max batch size: %d\n", c.Scraper.MaxBatchSize)
			fmt.Fprintf(out, "  Pacing: %s\n", c.Pacing.Mode)
			fmt.Fprintf(out, "  Browser fallback: %t\n", c.Browser.Enabled)
			fmt.Fprintf(out, "  Output format: %s\n", c.Output.Format)
		}
		return nil
	},
}

var configTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a configuration template",
	Long: `Prints a YAML configuration template.

Template types:
  basic       Defaults (fixed one second pacing)
  aggressive  Rate-limited pacing with retries and larger batches
  browser     Headless browser fallback with periodic pauses
  thai        Thai storefront headers and selectors`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return config.SaveToWriter(config.GenerateTemplate(templateType), cmd.OutOrStdout())
	},
}

func init() {
	configTemplateCmd.Flags().StringVar(&templateType, "type", "basic", "template type: basic, aggressive, browser, thai")
	configCmd.AddCommand(configValidateCmd, configTemplateCmd)
	rootCmd.AddCommand(configCmd)
}
