// cmd/pricescrapexter/scrape.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/valpere/PriceScrapexter/internal/catalog"
	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/output"
	"github.com/valpere/PriceScrapexter/internal/report"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

var (
	scrapeOutput string
	scrapeFormat string
	scrapeLimit  int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <catalog.csv>",
	Short: "Scrape every competitor URL in a catalog CSV",
	Long: `Reads a catalog CSV (product_name, our_price, competitor_url_1..3) or a
previously exported results CSV (name, url), scrapes each URL in batches and
writes the results.

The output format follows --format, then the extension of --output, then
output.format from the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		products, err := readProducts(args[0])
		if err != nil {
			return err
		}
		if scrapeLimit > 0 && scrapeLimit < len(products) {
			products = products[:scrapeLimit]
		}
		logger.Infof("loaded %d products from %s", len(products), args[0])

		manager, err := output.NewManager(resolveFormat())
		if err != nil {
			return errors.NewInputError("format", "%v", err)
		}

		p, err := buildPipeline(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer p.Close()

		results, err := scrapeAll(ctx, p, products)
		if err != nil {
			return err
		}

		dest := scrapeOutput
		if dest == "" {
			dest = cfg.Output.File
		}
		if err := writeResults(cmd.OutOrStdout(), manager, dest, results); err != nil {
			return err
		}

		// keep stdout clean for piped exports
		summary := cmd.OutOrStdout()
		if dest == "" || dest == "-" {
			summary = cmd.ErrOrStderr()
		} else {
			fmt.Fprintf(summary, "Wrote %d results to %s\n", len(results), dest)
		}
		return report.Compute(results).Render(summary)
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output file, - for stdout (default: output.file)")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "", "output format: csv, json, yaml, xlsx")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "max products to scrape (0 = all)")
	rootCmd.AddCommand(scrapeCmd)
}

// readProducts accepts a catalog CSV and falls back to an exported results CSV.
func readProducts(filename string) ([]scraper.Product, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", filename)
	}

	products, err := catalog.Load(bytes.NewReader(data))
	if errors.Is(err, catalog.ErrMissingProductName) {
		products, err = output.ReadCSV(bytes.NewReader(data))
		if err == nil && len(products) == 0 {
			err = errors.ErrEmptyBatch
		}
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

func resolveFormat() string {
	switch {
	case scrapeFormat != "":
		return scrapeFormat
	case scrapeOutput != "" && scrapeOutput != "-":
		return string(output.DetectFormat(scrapeOutput))
	}
	return cfg.Output.Format
}

// scrapeAll runs products through the engine in batches no larger than the
// engine accepts, pacing between batches as within them.
func scrapeAll(ctx context.Context, p *pipeline, products []scraper.Product) ([]scraper.Product, error) {
	var results []scraper.Product
	batches := catalog.Chunk(products, p.engine.MaxBatchSize())

	for i, batch := range batches {
		if i > 0 {
			if err := p.pacer.Wait(ctx, len(results)); err != nil {
				return nil, err
			}
		}

		res, err := p.engine.Run(ctx, batch)
		if err != nil {
			return nil, err
		}
		logger.Infof("batch %d/%d: %d found, %d failed", i+1, len(batches), res.Summary.Successful, res.Summary.Failed)
		results = append(results, res.Products...)
	}
	return results, nil
}

func writeResults(stdout io.Writer, m *output.Manager, dest string, products []scraper.Product) error {
	if dest == "" || dest == "-" {
		if err := m.Write(stdout, products); err != nil {
			return &errors.OutputError{Path: "stdout", Err: err}
		}
		return nil
	}
	return m.WriteFile(dest, products)
}
