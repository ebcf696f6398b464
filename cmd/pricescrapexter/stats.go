// cmd/pricescrapexter/stats.go
package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/valpere/PriceScrapexter/internal/output"
	"github.com/valpere/PriceScrapexter/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <results.csv>",
	Short: "Summarize the prices in an exported results CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "failed to open %s", args[0])
		}
		defer f.Close()

		products, err := output.ReadCSV(f)
		if err != nil {
			return err
		}
		return report.Compute(products).Render(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "PriceScrapexter %s\n", version)
		fmt.Fprintf(out, "Build time: %s\n", buildTime)
		fmt.Fprintf(out, "Git commit: %s\n", gitCommit)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, versionCmd)
}
