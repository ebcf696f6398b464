// pkg/api/types.go
package api

import (
	"time"
)

// Product is a competitor page to price, as sent to and returned by the API.
type Product struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Price           string `json:"price,omitempty"`
	Error           string `json:"error,omitempty"`
	OriginalProduct string `json:"originalProduct,omitempty"`
	OurPrice        string `json:"ourPrice,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// ScrapeResponse is the body returned by the scrape endpoint.
type ScrapeResponse struct {
	Products []Product `json:"products"`
	Summary  *Summary  `json:"summary,omitempty"`
}

// SelectorMatch describes one element matched by a price selector.
type SelectorMatch struct {
	Selector  string `json:"selector"`
	Text      string `json:"text,omitempty"`
	Content   string `json:"content,omitempty"`
	DataPrice string `json:"dataPrice,omitempty"`
	Value     string `json:"value,omitempty"`
	HTML      string `json:"html,omitempty"`
	Valid     bool   `json:"valid"`
}

// PatternMatches lists the matches of one price pattern.
type PatternMatches struct {
	Pattern string   `json:"pattern"`
	Name    string   `json:"name"`
	Matches []string `json:"matches"`
}

// DebugResponse is the body returned by the debug endpoint. When the page
// itself answered with an error, only Error and StatusCode are set.
type DebugResponse struct {
	URL          string           `json:"url,omitempty"`
	Status       string           `json:"-"`
	StatusCode   int              `json:"-"`
	Error        string           `json:"error,omitempty"`
	FoundPrice   *string          `json:"foundPrice"`
	Strategy     string           `json:"strategy,omitempty"`
	Source       string           `json:"source,omitempty"`
	DebugResults []SelectorMatch  `json:"debugResults"`
	RegexMatches []PatternMatches `json:"regexMatches"`
	HTMLLength   int              `json:"htmlLength"`
	HTMLPreview  string           `json:"htmlPreview"`
}

// Stats summarizes the prices of a product list.
type Stats struct {
	TotalProducts        int      `json:"totalProducts"`
	CheapestProduct      *Product `json:"cheapestProduct"`
	MostExpensiveProduct *Product `json:"mostExpensiveProduct"`
	MinPrice             float64  `json:"minPrice"`
	MaxPrice             float64  `json:"maxPrice"`
	AvgPrice             float64  `json:"avgPrice"`
	PriceDifference      float64  `json:"priceDifference"`
	PercentageDifference float64  `json:"percentageDifference"`
}

// HealthStatus represents the health status of the scraper service
type HealthStatus struct {
	Status     string                 `json:"status"` // healthy, degraded, unhealthy
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  time.Time              `json:"timestamp"`
	Goroutines int                    `json:"goroutines"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one health check.
type CheckResult struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Export is a downloaded file.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}
