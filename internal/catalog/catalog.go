// internal/catalog/catalog.go
package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// Column names of the catalog CSV.
const (
	ColumnProductName = "product_name"
	ColumnOurPrice    = "our_price"
)

var (
	// ErrMissingProductName is returned when the header has no product_name column.
	ErrMissingProductName = errors.NewInputError("csv", `CSV must include "product_name" column`)
	// ErrNoCompetitorURLs is returned when no named row lists a competitor URL.
	ErrNoCompetitorURLs = errors.NewInputError("csv", "CSV must contain products with at least one competitor URL")
)

// Row is one line of a catalog CSV.
type Row struct {
	ProductName    string `csv:"product_name"`
	OurPrice       string `csv:"our_price,omitempty"`
	CompetitorURL1 string `csv:"competitor_url_1,omitempty"`
	CompetitorURL2 string `csv:"competitor_url_2,omitempty"`
	CompetitorURL3 string `csv:"competitor_url_3,omitempty"`
}

// CompetitorURLs returns the row's non-blank URLs in column order.
func (r Row) CompetitorURLs() []string {
	var urls []string
	for _, u := range []string{r.CompetitorURL1, r.CompetitorURL2, r.CompetitorURL3} {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Parse reads a catalog CSV. Blank lines are skipped and short or long
// records are fitted to the header.
func Parse(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingProductName
	}
	if err != nil {
		return nil, errors.NewInputError("csv", "invalid CSV: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !hasColumn(header, ColumnProductName) {
		return nil, ErrMissingProductName
	}

	dec, err := csvutil.NewDecoder(&fittedReader{r: cr, width: len(header)}, header...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create CSV decoder")
	}

	var rows []Row
	for {
		var row Row
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, errors.NewInputError("csv", "invalid CSV near line %d: %v", line, err)
		}
		row.ProductName = strings.TrimSpace(row.ProductName)
		row.OurPrice = strings.TrimSpace(row.OurPrice)
		rows = append(rows, row)
	}

	return rows, nil
}

// ToProducts expands rows into one product per competitor URL. Rows without a
// product name are skipped.
func ToProducts(rows []Row) []scraper.Product {
	var products []scraper.Product
	for _, row := range rows {
		if row.ProductName == "" {
			continue
		}
		for i, u := range row.CompetitorURLs() {
			products = append(products, scraper.Product{
				Name:            fmt.Sprintf("%s - Competitor %d", row.ProductName, i+1),
				URL:             u,
				OriginalProduct: row.ProductName,
				OurPrice:        row.OurPrice,
			})
		}
	}
	return products
}

// Load parses a catalog and expands it into products.
func Load(r io.Reader) ([]scraper.Product, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}
	products := ToProducts(rows)
	if len(products) == 0 {
		return nil, ErrNoCompetitorURLs
	}
	return products, nil
}

// LoadFile loads a catalog from disk.
func LoadFile(filename string) ([]scraper.Product, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open catalog %s", filename)
	}
	defer f.Close()

	return Load(f)
}

// Chunk splits products into consecutive batches of at most size items.
func Chunk(products []scraper.Product, size int) [][]scraper.Product {
	if size < 1 {
		size = 1
	}
	var batches [][]scraper.Product
	for start := 0; start < len(products); start += size {
		end := start + size
		if end > len(products) {
			end = len(products)
		}
		batches = append(batches, products[start:end])
	}
	return batches
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// fittedReader pads or truncates records to the header width and skips
// records that are entirely blank.
type fittedReader struct {
	r     *csv.Reader
	width int
}

func (f *fittedReader) Read() ([]string, error) {
	for {
		record, err := f.r.Read()
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		switch {
		case len(record) < f.width:
			record = append(record, make([]string, f.width-len(record))...)
		case len(record) > f.width:
			record = record[:f.width]
		}
		return record, nil
	}
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
