// internal/scraper/types.go
package scraper

import (
	"time"
)

// DefaultFallbackPrice is written to products whose price could not be scraped.
const DefaultFallbackPrice = "Price not found"

// Product is a competitor page to price. Identity is the (Name, URL) pair.
type Product struct {
	Name            string `json:"name" yaml:"name" csv:"name"`
	URL             string `json:"url" yaml:"url" csv:"url"`
	Price           string `json:"price,omitempty" yaml:"price,omitempty" csv:"price"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty" csv:"error,omitempty"`
	OriginalProduct string `json:"originalProduct,omitempty" yaml:"original_product,omitempty" csv:"originalProduct,omitempty"`
	OurPrice        string `json:"ourPrice,omitempty" yaml:"our_price,omitempty" csv:"ourPrice,omitempty"`
}

// Candidate is a string that a strategy judged to be a price.
type Candidate struct {
	Value    string `json:"value"`
	Strategy string `json:"strategy"`
	Source   string `json:"source,omitempty"`
}

// ExtractionResult is the outcome of scraping a single URL. An empty Price means no price.
type ExtractionResult struct {
	URL        string        `json:"url"`
	Price      string        `json:"price"`
	Error      string        `json:"error,omitempty"`
	Strategy   string        `json:"strategy,omitempty"`
	Source     string        `json:"source,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`

	err error
}

// Err returns the underlying error, if any.
func (r ExtractionResult) Err() error {
	return r.err
}

// Success reports whether a price was found.
func (r ExtractionResult) Success() bool {
	return r.err == nil && r.Price != ""
}

// Summary aggregates a batch run.
type Summary struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// BatchResult holds the products of a batch, in input order, plus a summary.
type BatchResult struct {
	Products []Product `json:"products"`
	Summary  Summary   `json:"summary"`
}
