// internal/output/csv.go
package output

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// Fixed leading columns of a CSV export.
var baseColumns = []string{"name", "url", "price"}

// CSVColumns returns the export header: name, url and price, then every
// other field populated on any product in first-seen order.
func CSVColumns(products []scraper.Product) []string {
	columns := append([]string(nil), baseColumns...)
	seen := map[string]bool{"name": true, "url": true, "price": true}
	for _, p := range products {
		for _, f := range extraFields(p) {
			if f.value != "" && !seen[f.name] {
				seen[f.name] = true
				columns = append(columns, f.name)
			}
		}
	}
	return columns
}

type field struct {
	name  string
	value string
}

func extraFields(p scraper.Product) []field {
	return []field{
		{"originalProduct", p.OriginalProduct},
		{"ourPrice", p.OurPrice},
		{"error", p.Error},
	}
}

func fieldValue(p scraper.Product, column string) string {
	switch column {
	case "name":
		return p.Name
	case "url":
		return p.URL
	case "price":
		return p.Price
	}
	for _, f := range extraFields(p) {
		if f.name == column {
			return f.value
		}
	}
	return ""
}

// WriteCSV writes products with every data field double-quoted.
func WriteCSV(w io.Writer, products []scraper.Product) error {
	bw := bufio.NewWriter(w)
	columns := CSVColumns(products)

	if _, err := bw.WriteString(strings.Join(columns, ",") + "\n"); err != nil {
		return eris.Wrap(err, "failed to write CSV header")
	}

	record := make([]string, len(columns))
	for _, p := range products {
		for i, column := range columns {
			record[i] = quote(fieldValue(p, column))
		}
		if _, err := bw.WriteString(strings.Join(record, ",") + "\n"); err != nil {
			return eris.Wrap(err, "failed to write CSV record")
		}
	}

	return eris.Wrap(bw.Flush(), "failed to flush CSV output")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReadCSV parses a CSV export back into products.
func ReadCSV(r io.Reader) ([]scraper.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to read CSV header")
	}

	var products []scraper.Product
	for {
		var p scraper.Product
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "failed to decode CSV record")
		}
		products = append(products, p)
	}
	return products, nil
}
