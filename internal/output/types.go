// internal/output/types.go
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatXLSX OutputFormat = "xlsx"
)

// BaseFileName is the stem of every export file name.
const BaseFileName = "price-comparison-results"

// ValidOutputFormats returns all valid output format values
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatCSV, FormatJSON, FormatYAML, FormatXLSX}
}

// ParseFormat resolves a format name. "yml" and "excel" are accepted as aliases.
func ParseFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", name)
}

// DetectFormat infers the format from a file extension, defaulting to CSV.
func DetectFormat(filename string) OutputFormat {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
	if err != nil {
		return FormatCSV
	}
	return f
}

// Extension returns the file extension without the dot.
func (f OutputFormat) Extension() string {
	return string(f)
}

// ContentType returns the MIME type used for downloads.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// FileName returns the download file name for the format.
func (f OutputFormat) FileName() string {
	return BaseFileName + "." + f.Extension()
}

// Writer serializes products in a single format.
type Writer interface {
	Write(w io.Writer, products []scraper.Product) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(w io.Writer, products []scraper.Product) error

func (f WriterFunc) Write(w io.Writer, products []scraper.Product) error {
	return f(w, products)
}
