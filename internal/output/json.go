// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// WriteJSON writes products as a JSON array indented with two spaces.
func WriteJSON(w io.Writer, products []scraper.Product) error {
	if products == nil {
		products = []scraper.Product{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return eris.Wrap(encoder.Encode(products), "failed to encode JSON")
}

// WriteYAML writes products as a YAML sequence.
func WriteYAML(w io.Writer, products []scraper.Product) error {
	if products == nil {
		products = []scraper.Product{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(products); err != nil {
		return eris.Wrap(err, "failed to encode YAML")
	}
	return eris.Wrap(encoder.Close(), "failed to flush YAML")
}
