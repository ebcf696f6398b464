// cmd/pricescrapexter/extract.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var extractDebug bool

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Scrape the price of a single page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer p.Close()

		out := cmd.OutOrStdout()
		if extractDebug {
			inspection, err := p.engine.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(inspection)
		}

		res := p.engine.ScrapePrice(cmd.Context(), args[0])
		if !res.Success() {
			return res.Err()
		}
		fmt.Fprintln(out, res.Price)
		if verbose {
			fmt.Fprintf(out, "strategy: %s\nsource: %s\nattempts: %d\n", res.Strategy, res.Source, res.Attempts)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractDebug, "debug", false, "print every candidate the heuristics find as JSON")
	rootCmd.AddCommand(extractCmd)
}
