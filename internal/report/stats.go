// internal/report/stats.go
package report

import (
	"fmt"
	"io"

	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// Stats summarizes the scraped prices of a product list.
type Stats struct {
	TotalProducts        int              `json:"totalProducts" yaml:"total_products"`
	CheapestProduct      *scraper.Product `json:"cheapestProduct" yaml:"cheapest_product"`
	MostExpensiveProduct *scraper.Product `json:"mostExpensiveProduct" yaml:"most_expensive_product"`
	MinPrice             float64          `json:"minPrice" yaml:"min_price"`
	MaxPrice             float64          `json:"maxPrice" yaml:"max_price"`
	AvgPrice             float64          `json:"avgPrice" yaml:"avg_price"`
	PriceDifference      float64          `json:"priceDifference" yaml:"price_difference"`
	PercentageDifference float64          `json:"percentageDifference" yaml:"percentage_difference"`
}

// HasPrice reports whether p carries a scraped price. A product with an error
// holds the fallback text, whatever it was configured to be.
func HasPrice(p scraper.Product) bool {
	return p.Error == "" && p.Price != "" && p.Price != scraper.DefaultFallbackPrice
}

// NumericPrice parses the amount in price with the same separator rules the
// validator uses, so "£1,299.99" is 1299.99 and "19,99 €" is 19.99.
// Unparseable input is 0.
func NumericPrice(price string) float64 {
	v, ok := scraper.ParseAmount(price)
	if !ok {
		return 0
	}
	return v
}

// Compute returns statistics over products with a price, or nil when none has one.
// PercentageDifference is the spread relative to the minimum, and 0 when the
// minimum is 0.
func Compute(products []scraper.Product) *Stats {
	var priced []scraper.Product
	for _, p := range products {
		if HasPrice(p) {
			priced = append(priced, p)
		}
	}
	if len(priced) == 0 {
		return nil
	}

	s := &Stats{TotalProducts: len(priced)}
	var sum float64
	cheapest, dearest := 0, 0
	values := make([]float64, len(priced))
	for i, p := range priced {
		v := NumericPrice(p.Price)
		values[i] = v
		sum += v
		if v < values[cheapest] {
			cheapest = i
		}
		if v > values[dearest] {
			dearest = i
		}
	}

	s.CheapestProduct = &priced[cheapest]
	s.MostExpensiveProduct = &priced[dearest]
	s.MinPrice = values[cheapest]
	s.MaxPrice = values[dearest]
	s.AvgPrice = sum / float64(len(priced))
	s.PriceDifference = s.MaxPrice - s.MinPrice
	if s.MinPrice > 0 {
		s.PercentageDifference = s.PriceDifference / s.MinPrice * 100
	}
	return s
}

// Comparable reports whether there are enough prices for a meaningful comparison.
func (s *Stats) Comparable() bool {
	return s != nil && s.TotalProducts >= 2
}

// Render prints a short human-readable summary.
func (s *Stats) Render(w io.Writer) error {
	if s == nil {
		_, err := fmt.Fprintln(w, "No valid prices found.")
		return err
	}

	_, err := fmt.Fprintf(w,
		"Products with prices: %d\n"+
			"Lowest:  %.2f (%s)\n"+
			"Highest: %.2f (%s)\n"+
			"Average: %.2f\n"+
			"Spread:  %.2f (%.1f%%)\n",
		s.TotalProducts,
		s.MinPrice, s.CheapestProduct.Name,
		s.MaxPrice, s.MostExpensiveProduct.Name,
		s.AvgPrice,
		s.PriceDifference, s.PercentageDifference,
	)
	return err
}
