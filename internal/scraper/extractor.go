// internal/scraper/extractor.go
package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// PriceExtractor runs strategies in order and stops at the first hit.
type PriceExtractor struct {
	strategies []Strategy
	logger     utils.Logger
}

// NewPriceExtractor creates an extractor. With no strategies the defaults are used.
func NewPriceExtractor(logger utils.Logger, strategies ...Strategy) *PriceExtractor {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies(NewPriceValidator(), nil)
	}
	for _, s := range strategies {
		if sd, ok := s.(*StructuredDataStrategy); ok && sd.OnError == nil {
			sd.OnError = func(err error) {
				logger.Debugf("skipping malformed JSON-LD block: %v", err)
			}
		}
	}
	return &PriceExtractor{strategies: strategies, logger: logger}
}

// Extract returns the first non-empty candidate found, or errors.ErrPriceNotFound.
func (pe *PriceExtractor) Extract(doc *goquery.Document) (Candidate, error) {
	for _, s := range pe.strategies {
		if c, ok := s.TryExtract(doc); ok && strings.TrimSpace(c.Value) != "" {
			pe.logger.WithFields(map[string]interface{}{
				"strategy": c.Strategy,
				"source":   c.Source,
			}).Debugf("found price %q", c.Value)
			return c, nil
		}
		pe.logger.Debugf("strategy %s found nothing", s.Name())
	}
	return Candidate{}, errors.ErrPriceNotFound
}

// ExtractFromReader parses HTML from r and extracts a price.
func (pe *PriceExtractor) ExtractFromReader(r io.Reader) (Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return pe.Extract(doc)
}

// ExtractFromHTML parses html and extracts a price.
func (pe *PriceExtractor) ExtractFromHTML(html string) (Candidate, error) {
	return pe.ExtractFromReader(strings.NewReader(html))
}
